package models

import "time"

type Store struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LibraryItem struct {
	UserID          int64           `json:"user_id"`
	TitleID         int64           `json:"title_id"`
	StoreID         int64           `json:"store_id"`
	AcquisitionType AcquisitionType `json:"acquisition_type"`
	Note            string          `json:"note,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
