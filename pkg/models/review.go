package models

import "time"

// Review holds one user's review of one title. Sub-scores are stored
// doubled (0..20) so the 0.5-step scale stays integral.
type Review struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	TitleID     int64     `json:"title_id"`
	GraphicsX2  int       `json:"graphics_x2"`
	StoryX2     int       `json:"story_x2"`
	MusicX2     int       `json:"music_x2"`
	EtcX2       int       `json:"etc_x2"`
	ReviewText  string    `json:"review_text,omitempty"`
	SpoilerFlag bool      `json:"spoiler_flag"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r Review) Graphics() float64 { return float64(r.GraphicsX2) / 2 }
func (r Review) Story() float64    { return float64(r.StoryX2) / 2 }
func (r Review) Music() float64    { return float64(r.MusicX2) / 2 }
func (r Review) Etc() float64      { return float64(r.EtcX2) / 2 }
