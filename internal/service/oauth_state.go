package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OAuthState is the opaque value round-tripped through a provider's
// authorize redirect: base64-encoded JSON carrying the user, the platform
// being connected, a random nonce and an issue timestamp. States older than
// stateMaxAge are rejected, and the nonce must match a pending authorization,
// which makes each state single-use.
type OAuthState struct {
	UserID   int64  `json:"user_id"`
	Platform string `json:"platform"`
	Nonce    string `json:"nonce"`
	IssuedAt int64  `json:"issued_at"`
}

const stateMaxAge = 10 * time.Minute

var ErrStateExpired = errors.New("authorization state expired")

func NewOAuthState(userID int64, platform string) *OAuthState {
	return &OAuthState{
		UserID:   userID,
		Platform: platform,
		Nonce:    uuid.NewString(),
		IssuedAt: time.Now().Unix(),
	}
}

func (s *OAuthState) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeOAuthState(encoded string) (*OAuthState, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	var s OAuthState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}

	if s.UserID == 0 || s.Nonce == "" {
		return nil, errors.New("authorization state is incomplete")
	}

	if time.Since(time.Unix(s.IssuedAt, 0)) > stateMaxAge {
		return nil, ErrStateExpired
	}

	return &s, nil
}
