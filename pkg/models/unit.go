package models

import "time"

type Unit struct {
	ID                int64         `json:"id"`
	TitleID           int64         `json:"title_id"`
	UnitType          UnitType      `json:"unit_type"`
	UnitKey           string        `json:"unit_key"`
	NormalizedUnitKey string        `json:"-"`
	DisplayName       string        `json:"display_name,omitempty"`
	SortOrder         *int          `json:"sort_order,omitempty"`
	ReleaseDate       string        `json:"release_date,omitempty"`
	CharacterID       *int64        `json:"character_id,omitempty"`
	Status            ContentStatus `json:"status"`
	CreatedBy         int64         `json:"created_by"`
	CreatedAt         time.Time     `json:"created_at"`
}
