package transfer

// LeadImportSummary reports one CSV import: Imported + Invalid always equals
// Total (the number of data rows, header excluded).
type LeadImportSummary struct {
	BatchID  string   `json:"batch_id"`
	Total    int      `json:"total"`
	Imported int      `json:"imported"`
	Invalid  int      `json:"invalid"`
	Errors   []string `json:"errors,omitempty"`
}

type LeadPushRequest struct {
	BatchID      string `json:"batch_id"`
	CampaignName string `json:"campaign_name"`
	EmailItemID  int64  `json:"email_item_id"`
	Subject      string `json:"subject"`
}
