package models

import "time"

const (
	PlatformLinkedin  = "linkedin"
	PlatformTwitter   = "twitter"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformGDrive    = "gdrive"
)

const (
	CredentialStatusActive       = "active"
	CredentialStatusReauthNeeded = "reauth_required"
)

// Credential is the stored token record for one (user, platform) pair.
// Access and refresh tokens are AES-GCM encrypted before they reach the
// database. RefreshToken is empty for platforms that never issue one
// (LinkedIn); callers must check HasRefreshToken before refreshing.
type Credential struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Platform        string    `db:"platform" json:"platform"`
	AccountID       string    `db:"account_id" json:"account_id"`
	AccountName     string    `db:"account_name" json:"account_name"`
	AccountUsername string    `db:"account_username" json:"account_username"`
	ProfilePicture  string    `db:"profile_picture_url" json:"profile_picture"`
	AccessToken     string    `db:"access_token" json:"-"`
	RefreshToken    string    `db:"refresh_token" json:"-"`
	TokenType       string    `db:"token_type" json:"token_type"`
	Scopes          string    `db:"scopes" json:"scopes"`
	TokenExpiresAt  time.Time `db:"token_expires_at" json:"token_expires_at"`
	Metadata        string    `db:"metadata" json:"metadata"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

func (c *Credential) Expired(now time.Time) bool {
	return !c.TokenExpiresAt.IsZero() && c.TokenExpiresAt.Before(now)
}

func KnownPlatform(platform string) bool {
	switch platform {
	case PlatformLinkedin, PlatformTwitter, PlatformFacebook, PlatformInstagram, PlatformGDrive:
		return true
	}
	return false
}
