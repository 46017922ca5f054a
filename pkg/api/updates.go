package api

// UpdateView представляет пост "что нового"
type UpdateView struct {
	ID         string `json:"id"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"` // display name автора на момент чтения
	Date       string `json:"date"`       // YYYY-MM-DD
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	CreatedAt  string `json:"createdAt"` // RFC3339
	UpdatedAt  string `json:"updatedAt"` // RFC3339
}

// CreateUpdateRequest представляет создание поста
type CreateUpdateRequest struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// EditUpdateRequest представляет редактирование поста
type EditUpdateRequest struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// UpdatesResponse представляет список постов
type UpdatesResponse struct {
	Updates []*UpdateView `json:"updates"`
}

// UpdateResponse представляет один пост
type UpdateResponse struct {
	Update *UpdateView `json:"update"`
}

// Типы элементов календаря
const (
	CalendarItemBirthday = "birthday"
	CalendarItemUpdate   = "update"
)

// CalendarItem представляет один элемент объединенного календаря:
// спроецированный в год день рождения или пост
type CalendarItem struct {
	Type   string      `json:"type"`             // birthday | update
	Date   string      `json:"date"`             // YYYY-MM-DD
	Title  string      `json:"title"`            // имя пользователя или заголовок поста
	UserID string      `json:"userId,omitempty"` // для дней рождения
	Update *UpdateView `json:"update,omitempty"` // для постов
}

// CalendarResponse представляет ответ GET /calendar
type CalendarResponse struct {
	From  string          `json:"from"`
	To    string          `json:"to"`
	Items []*CalendarItem `json:"items"`
}
