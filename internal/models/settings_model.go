package models

import "time"

// Settings holds per-user brand defaults folded into generation prompts.
type Settings struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	BrandVoice  string    `db:"brand_voice" json:"brand_voice"`
	DefaultTone string    `db:"default_tone" json:"default_tone"`
	DefaultCTA  string    `db:"default_cta" json:"default_cta"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
