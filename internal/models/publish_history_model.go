package models

import "time"

type PublishHistory struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	ItemID         int64     `db:"item_id" json:"item_id"`
	Platform       string    `db:"platform" json:"platform"`
	ProviderPostID string    `db:"provider_post_id" json:"provider_post_id"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
