package models

import "time"

// Comment threads are loose: parent_id is not a foreign key, so an
// orphaned parent reference is tolerated.
type Comment struct {
	ID          int64         `json:"id"`
	TitleID     int64         `json:"title_id"`
	UserID      int64         `json:"user_id"`
	Body        string        `json:"body"`
	SpoilerFlag bool          `json:"spoiler_flag"`
	ParentID    *int64        `json:"parent_id,omitempty"`
	Status      ContentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}
