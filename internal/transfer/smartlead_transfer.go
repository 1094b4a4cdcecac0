package transfer

type SmartleadCampaignResponse struct {
	OK   bool   `json:"ok"`
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type SmartleadLead struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	CompanyName     string `json:"company_name"`
	Title           string `json:"title,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Website         string `json:"website,omitempty"`
	LinkedinProfile string `json:"linkedin_profile,omitempty"`
}

type SmartleadAddLeadsRequest struct {
	LeadList []SmartleadLead `json:"lead_list"`
}

type SmartleadAddLeadsResponse struct {
	OK           bool `json:"ok"`
	UploadCount  int  `json:"upload_count"`
	AlreadyAdded int  `json:"already_added_to_campaign"`
	InvalidCount int  `json:"invalid_email_count"`
}

type SmartleadSequence struct {
	SeqNumber       int    `json:"seq_number"`
	Subject         string `json:"subject"`
	EmailBody       string `json:"email_body"`
	SeqDelayDetails struct {
		DelayInDays int `json:"delay_in_days"`
	} `json:"seq_delay_details"`
}

type SmartleadStatusResponse struct {
	OK bool `json:"ok"`
}
