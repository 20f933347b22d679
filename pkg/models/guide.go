package models

import "time"

// Guide targets exactly one of a title or a unit; the unused slot
// stays null.
type Guide struct {
	ID         int64         `json:"id"`
	AuthorID   int64         `json:"author_id"`
	TitleID    *int64        `json:"title_id,omitempty"`
	UnitID     *int64        `json:"unit_id,omitempty"`
	GuideTitle string        `json:"guide_title"`
	Content    string        `json:"content"`
	Visibility Visibility    `json:"visibility"`
	Status     ContentStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
