package models

import "time"

type UnitProgress struct {
	UserID     int64          `json:"user_id"`
	UnitID     int64          `json:"unit_id"`
	Status     ProgressStatus `json:"status"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

type ProgressCounts struct {
	Total    int64 `json:"total"`
	Done     int64 `json:"done"`
	Progress int64 `json:"progress"`
	None     int64 `json:"none"`
}

// ProgressSummary is derived per request and never persisted.
type ProgressSummary struct {
	TitleID       int64          `json:"title_id"`
	DerivedStatus ProgressStatus `json:"derived_status"`
	Counts        ProgressCounts `json:"counts"`
}
