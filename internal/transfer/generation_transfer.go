package transfer

// CampaignCreation is the campaign create request body.
type CampaignCreation struct {
	Name           string   `json:"name"`
	ProductName    string   `json:"product_name"`
	Description    string   `json:"description"`
	TargetAudience string   `json:"target_audience"`
	Tone           string   `json:"tone"`
	ContentTypes   []string `json:"content_types"`
	Platforms      []string `json:"platforms"`
	Workflow       string   `json:"workflow"`
}

// GeneratedItem is one element of the JSON array the model is instructed
// to return. The contract is fixed; anything that does not parse fails the
// whole generation call.
type GeneratedItem struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype"`
	Platform    string `json:"platform"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
}

type ContentUpdate struct {
	ItemID int64  `json:"item_id"`
	Text   string `json:"text"`
}

type RegenerateRequest struct {
	ItemID       int64  `json:"item_id"`
	Instructions string `json:"instructions"`
	ImagePrompt  string `json:"image_prompt"`
}

type PublishRequest struct {
	ItemID   int64  `json:"item_id"`
	Platform string `json:"platform"`
}
