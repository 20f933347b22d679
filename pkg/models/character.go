package models

import "time"

// Character belongs to a GAME title. The two normalized name columns
// are independent uniqueness scopes within the title.
type Character struct {
	ID                     int64         `json:"id"`
	TitleID                int64         `json:"title_id"`
	OriginalName           string        `json:"original_name"`
	KoreanName             *string       `json:"korean_name,omitempty"`
	NormalizedOriginalName string        `json:"-"`
	NormalizedKoreanName   *string       `json:"-"`
	ImageURL               string        `json:"image_url,omitempty"`
	IsExplicit             bool          `json:"is_explicit"`
	Status                 ContentStatus `json:"status"`
	CreatedBy              int64         `json:"created_by"`
	CreatedAt              time.Time     `json:"created_at"`
}
