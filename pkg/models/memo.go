package models

import "time"

type Memo struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	TitleID     *int64     `json:"title_id,omitempty"`
	UnitID      *int64     `json:"unit_id,omitempty"`
	MemoText    string     `json:"memo_text"`
	SpoilerFlag bool       `json:"spoiler_flag"`
	Visibility  Visibility `json:"visibility"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
