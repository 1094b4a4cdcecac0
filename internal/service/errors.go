package service

import (
	"errors"
	"fmt"
)

// Publish error taxonomy. Handlers map these onto HTTP statuses: not
// connected is a 404-equivalent, expired tokens ask for a reconnect, 403s
// get permission wording, everything else is a generic provider failure.
var (
	ErrNotConnected     = errors.New("platform is not connected")
	ErrTokenExpired     = errors.New("access token expired, please reconnect the account")
	ErrPermissionDenied = errors.New("insufficient permissions, reconnect with the required scopes")
	ErrImageRequired    = errors.New("an image is required for this platform")
)

// ProviderError carries the provider's error payload verbatim alongside the
// classification sentinel.
type ProviderError struct {
	Platform   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Platform, e.Err.Error(), e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s request failed (status %d): %s", e.Platform, e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// providerFailure classifies a non-2xx provider response.
func providerFailure(platform string, statusCode int, body []byte) error {
	pe := &ProviderError{
		Platform:   platform,
		StatusCode: statusCode,
		Body:       string(body),
	}
	switch statusCode {
	case 401:
		pe.Err = ErrTokenExpired
	case 403:
		pe.Err = ErrPermissionDenied
	}
	return pe
}
