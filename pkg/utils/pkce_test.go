package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestGenerateCodeVerifier(t *testing.T) {
	t.Parallel()

	a, err := GenerateCodeVerifier()
	if err != nil {
		t.Fatalf("GenerateCodeVerifier error: %v", err)
	}
	if len(a) != 43 {
		t.Fatalf("verifier length: got %d want 43", len(a))
	}

	b, err := GenerateCodeVerifier()
	if err != nil {
		t.Fatalf("GenerateCodeVerifier error: %v", err)
	}
	if a == b {
		t.Fatalf("two verifiers are identical")
	}
}

func TestCodeChallengeS256(t *testing.T) {
	t.Parallel()

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"

	sum := sha256.Sum256([]byte(verifier))
	want := base64.RawURLEncoding.EncodeToString(sum[:])

	if got := CodeChallengeS256(verifier); got != want {
		t.Fatalf("challenge mismatch: got %q want %q", got, want)
	}
}
