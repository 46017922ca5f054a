package models

import "time"

// Update представляет пост "что нового" в семейном календаре
type Update struct {
	ID        string    `json:"id"`         // UUID поста
	AuthorID  string    `json:"author_id"`  // ID автора
	Date      time.Time `json:"date"`       // дата, к которой привязан пост (без времени)
	Title     string    `json:"title"`      // заголовок
	Body      string    `json:"body"`       // текст (опционально)
	CreatedAt time.Time `json:"created_at"` // время создания
	UpdatedAt time.Time `json:"updated_at"` // время последнего изменения
}
