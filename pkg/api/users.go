package api

// CreateUserRequest представляет создание аккаунта администратором
type CreateUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Password    string `json:"password,omitempty"` // пусто = аккаунт без пароля (setup flow)
	Role        string `json:"role"`               // user или admin
}

// UpdateUserRequest представляет частичное редактирование аккаунта
// администратором. ResetOnboarding - осознанная операция "прогнать
// onboarding заново": очищает день рождения, реквизит и отметку
// завершения, это не потеря данных.
type UpdateUserRequest struct {
	Username        *string       `json:"username"`
	DisplayName     *string       `json:"displayName"`
	Role            *string       `json:"role"`
	Birthday        *BirthdayView `json:"birthday"`
	PaymentHandle   *string       `json:"paymentHandle"`
	ResetOnboarding bool          `json:"resetOnboarding,omitempty"`
}

// ResetPasswordRequest представляет принудительную смену пароля администратором
type ResetPasswordRequest struct {
	Password string `json:"password"` // минимум 12 символов
}

// UsersResponse представляет список аккаунтов
type UsersResponse struct {
	Users []*UserView `json:"users"`
}

// UserResponse представляет один аккаунт
type UserResponse struct {
	User *UserView `json:"user"`
}
