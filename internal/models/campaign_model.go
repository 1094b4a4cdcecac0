package models

import "time"

const (
	WorkflowReview = "review"
	WorkflowAuto   = "auto"
)

const (
	CampaignStatusDraft      = "draft"
	CampaignStatusGenerating = "generating"
	CampaignStatusReady      = "ready"
	CampaignStatusFailed     = "failed"
)

// Campaign is immutable after creation apart from its status, which the
// generation worker advances.
type Campaign struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Name           string    `db:"name" json:"name"`
	ProductName    string    `db:"product_name" json:"product_name"`
	Description    string    `db:"description" json:"description"`
	TargetAudience string    `db:"target_audience" json:"target_audience"`
	Tone           string    `db:"tone" json:"tone"`
	ContentTypes   string    `db:"content_types" json:"content_types"` // comma separated
	Platforms      string    `db:"platforms" json:"platforms"`         // comma separated
	Workflow       string    `db:"workflow" json:"workflow"`
	Status         string    `db:"status" json:"status"`
	ErrorMessage   string    `db:"error_message" json:"error_message"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
