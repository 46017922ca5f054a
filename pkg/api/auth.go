package api

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Username string `json:"username"` // username пользователя
	Password string `json:"password"` // может быть пустым, если пароль еще не установлен
}

// LoginResponse представляет ответ на POST /auth/login.
// Либо User+CSRFToken (вход выполнен), либо NeedsPasswordSet
// с setup token (пароля нет, сессия не создана).
type LoginResponse struct {
	User             *UserView `json:"user,omitempty"`             // снимок пользователя
	CSRFToken        string    `json:"csrfToken,omitempty"`        // токен для заголовка X-CSRF-Token
	NeedsPasswordSet bool      `json:"needsPasswordSet,omitempty"` // true = требуется установка пароля
	SetupToken       string    `json:"setupToken,omitempty"`       // одноразовый токен установки пароля
	Username         string    `json:"username,omitempty"`         // для формы установки пароля
	DisplayName      string    `json:"displayName,omitempty"`      // для формы установки пароля
}

// SetPasswordRequest представляет запрос установки первого пароля
type SetPasswordRequest struct {
	SetupToken string `json:"setupToken"` // токен из LoginResponse
	Password   string `json:"password"`   // минимум 12 символов
}

// SetPasswordResponse представляет ответ на успешную установку пароля
type SetPasswordResponse struct {
	User      *UserView `json:"user"`      // снимок пользователя
	CSRFToken string    `json:"csrfToken"` // токен новой сессии
}

// LogoutResponse представляет ответ на выход
type LogoutResponse struct {
	OK bool `json:"ok"`
}

// CSRFResponse представляет ответ GET /auth/csrf
type CSRFResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// MeResponse представляет ответ GET /me
type MeResponse struct {
	User *UserView `json:"user"`
}

// UpdateProfileRequest представляет частичное обновление профиля.
// nil-поле не меняется, это partial update, а не перезапись.
type UpdateProfileRequest struct {
	DisplayName   *string       `json:"displayName"`
	Birthday      *BirthdayView `json:"birthday"`
	PaymentHandle *string       `json:"paymentHandle"`
}

// BirthdayView представляет день рождения (месяц/день, без года)
type BirthdayView struct {
	Month int `json:"month"` // 1-12
	Day   int `json:"day"`   // 1-31
}

// UserView представляет безопасный для клиента снимок пользователя.
// Хеш пароля наружу не отдается никогда.
type UserView struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	DisplayName   string        `json:"displayName"`
	Role          string        `json:"role"`
	Birthday      *BirthdayView `json:"birthday"`
	PaymentHandle *string       `json:"paymentHandle"`
	LastLoginAt   *string       `json:"lastLoginAt"` // RFC3339; null = onboarding не завершен
	NeedsSetup    bool          `json:"needsSetup"`  // вычисляется заново при каждом чтении
	NeedsPassword bool          `json:"needsPassword"`
	CreatedAt     string        `json:"createdAt"` // RFC3339
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
