package models

import "time"

// TitleStats is the denormalized per-title aggregate row. Averages are
// stored doubled (score x2) so 0.5-step scores stay exact integers at
// the review level; readers divide by two for display.
type TitleStats struct {
	TitleID       int64     `json:"title_id"`
	AvgGraphicsX2 float64   `json:"avg_graphics_x2"`
	AvgStoryX2    float64   `json:"avg_story_x2"`
	AvgMusicX2    float64   `json:"avg_music_x2"`
	AvgEtcX2      float64   `json:"avg_etc_x2"`
	ReviewCount   int       `json:"review_count"`
	CommentCount  int       `json:"comment_count"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s TitleStats) AvgGraphics() float64 { return s.AvgGraphicsX2 / 2 }
func (s TitleStats) AvgStory() float64    { return s.AvgStoryX2 / 2 }
func (s TitleStats) AvgMusic() float64    { return s.AvgMusicX2 / 2 }
func (s TitleStats) AvgEtc() float64      { return s.AvgEtcX2 / 2 }
