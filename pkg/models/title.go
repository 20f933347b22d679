package models

import "time"

type Title struct {
	ID            int64         `json:"id"`
	Type          TitleType     `json:"type"`
	OriginalTitle string        `json:"original_title"`
	KoreanTitle   string        `json:"korean_title,omitempty"`
	ReleaseDate   string        `json:"release_date,omitempty"`
	CoverURL      string        `json:"cover_url,omitempty"`
	Summary       string        `json:"summary,omitempty"`
	IsExplicit    bool          `json:"is_explicit"`
	Status        ContentStatus `json:"status"`
	CreatedBy     int64         `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
}

type TitleAlias struct {
	ID        int64  `json:"id"`
	TitleID   int64  `json:"title_id"`
	AliasText string `json:"alias_text"`
}
