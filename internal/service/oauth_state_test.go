package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/contentwell/contentwell/internal/models"
)

func TestOAuthState_RoundTrip(t *testing.T) {
	t.Parallel()

	state := NewOAuthState(42, models.PlatformLinkedin)

	encoded, err := state.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := DecodeOAuthState(encoded)
	if err != nil {
		t.Fatalf("DecodeOAuthState error: %v", err)
	}

	if decoded.UserID != 42 {
		t.Fatalf("UserID: got %d want 42", decoded.UserID)
	}
	if decoded.Platform != models.PlatformLinkedin {
		t.Fatalf("Platform: got %q want %q", decoded.Platform, models.PlatformLinkedin)
	}
	if decoded.Nonce != state.Nonce {
		t.Fatalf("Nonce mismatch: got %q want %q", decoded.Nonce, state.Nonce)
	}
}

func TestDecodeOAuthState_Incomplete(t *testing.T) {
	t.Parallel()

	state := &OAuthState{Platform: models.PlatformTwitter, IssuedAt: time.Now().Unix()}
	encoded, err := state.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	if _, err := DecodeOAuthState(encoded); err == nil {
		t.Fatalf("expected error for state without user and nonce, got nil")
	}
}

func TestDecodeOAuthState_Expired(t *testing.T) {
	t.Parallel()

	state := NewOAuthState(7, models.PlatformFacebook)
	state.IssuedAt = time.Now().Add(-time.Hour).Unix()

	encoded, err := state.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	_, err = DecodeOAuthState(encoded)
	if !errors.Is(err, ErrStateExpired) {
		t.Fatalf("expected ErrStateExpired, got %v", err)
	}
}

func TestDecodeOAuthState_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := DecodeOAuthState("%%%not-base64%%%"); err == nil {
		t.Fatalf("expected error for invalid base64, got nil")
	}

	notJSON := base64.RawURLEncoding.EncodeToString([]byte("plain text"))
	if _, err := DecodeOAuthState(notJSON); err == nil {
		t.Fatalf("expected error for non-JSON payload, got nil")
	}
}

func TestOAuthState_EncodingIsURLSafe(t *testing.T) {
	t.Parallel()

	state := NewOAuthState(1, models.PlatformGDrive)
	encoded, err := state.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("encoded state is not raw URL base64: %v", err)
	}
	if !json.Valid(raw) {
		t.Fatalf("encoded state does not contain JSON")
	}
}
