package transfer

type SettingsUpdate struct {
	BrandVoice  string `json:"brand_voice"`
	DefaultTone string `json:"default_tone"`
	DefaultCTA  string `json:"default_cta"`
}
