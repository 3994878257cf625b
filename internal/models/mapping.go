package models

import (
	"time"
)

// Mapping связывает короткий код с исходным URL и счётчиком переходов
type Mapping struct {
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateMappingInput struct {
	OriginalURL string `json:"url" form:"url"`
	CustomCode  string `json:"custom_code,omitempty" form:"custom_short_code"`
}
