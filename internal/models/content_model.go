package models

import "time"

const (
	ContentTypeBlogPost    = "blog_post"
	ContentTypeSocialPost  = "social_post"
	ContentTypeWebpageCopy = "webpage_copy"
	ContentTypeEmailCopy   = "email_copy"
)

const (
	ContentStatusDraft     = "draft"
	ContentStatusApproved  = "approved"
	ContentStatusPublished = "published"
	ContentStatusFailed    = "failed"
)

// ContentItem is one generated piece of content. Platform is a real column,
// not a tag smuggled inside metadata. ImageURL is always a permanent storage
// URL; generated base64 payloads are uploaded before the row is written.
type ContentItem struct {
	ID              int64     `db:"id" json:"id"`
	CampaignID      int64     `db:"campaign_id" json:"campaign_id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	ContentType     string    `db:"content_type" json:"content_type"`
	Subtype         string    `db:"subtype" json:"subtype"`
	Platform        string    `db:"platform" json:"platform"`
	GeneratedText   string    `db:"generated_text" json:"generated_text"`
	ImagePrompt     string    `db:"image_prompt" json:"image_prompt"`
	ImageURL        string    `db:"image_url" json:"image_url"`
	Status          string    `db:"status" json:"status"`
	PublishedPostID string    `db:"published_post_id" json:"published_post_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
