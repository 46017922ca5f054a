package api

// Машиночитаемые коды ошибок. Тела ошибок несут код, а не прозу,
// клиент сам решает, что показывать.
const (
	CodeInvalidRequest     = "invalid_request"     // 400: не прошла валидация
	CodeInvalidCredentials = "invalid_credentials" // 401: неизвестный username или неверный пароль, неразличимо
	CodeInvalidSetupToken  = "invalid_setup_token" // 401: токен отсутствует, истек или израсходован
	CodeUnauthorized       = "unauthorized"        // 401: нет валидной сессии
	CodeForbidden          = "forbidden"           // 403: сессия есть, прав нет (роль или CSRF)
	CodeConflict           = "conflict"            // 409: нарушение уникальности или инварианта
	CodeNotFound           = "not_found"           // 404: сущность не найдена
	CodeInternal           = "internal_error"      // 500: детали только в серверном логе
)

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // машиночитаемый код
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
