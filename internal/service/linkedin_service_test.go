package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/contentwell/contentwell/pkg/utils"
)

func newTestLinkedin(t *testing.T, cr *fakeCredentialRepo, handler http.Handler) *linkedinService {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		LinkedinClientID:     "li-client",
		LinkedinClientSecret: "li-secret",
		LinkedinRedirectURI:  "https://api.example.com/auth/linkedin/callback",
		SecretKey:            "0123456789abcdef0123456789abcdef",
	}

	return &linkedinService{
		cfg:      cfg,
		cr:       cr,
		tokenURL: srv.URL + "/oauth/v2/accessToken",
		apiBase:  srv.URL,
		client:   srv.Client(),
	}
}

func TestLinkedinCallback(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v2/accessToken", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
		}
		if r.Form.Get("client_secret") != "li-secret" {
			t.Errorf("client_secret: got %q", r.Form.Get("client_secret"))
		}
		json.NewEncoder(w).Encode(transfer.LinkedinTokenResponse{
			AccessToken: "li-access",
			ExpiresIn:   5184000,
			TokenType:   "Bearer",
		})
	})
	mux.HandleFunc("/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer li-access" {
			t.Errorf("authorization header: got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(transfer.LinkedinUserInfo{
			Sub:  "abc123",
			Name: "Ada Lovelace",
		})
	})

	cr := newFakeCredentialRepo()
	s := newTestLinkedin(t, cr, mux)

	if err := s.Callback(context.Background(), "the-code", 1); err != nil {
		t.Fatalf("Callback error: %v", err)
	}

	if len(cr.upserted) != 1 {
		t.Fatalf("upserted credentials: got %d want 1", len(cr.upserted))
	}
	cred := cr.upserted[0]
	if cred.Platform != models.PlatformLinkedin || cred.AccountID != "abc123" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if cred.RefreshToken != "" {
		t.Fatalf("LinkedIn credential carries a refresh token: %q", cred.RefreshToken)
	}
	if cred.HasRefreshToken() {
		t.Fatalf("HasRefreshToken reports true for a LinkedIn credential")
	}
}

func TestLinkedinPublish_TextOnly(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Restli-Protocol-Version") != "2.0.0" {
			t.Errorf("protocol header: got %q", r.Header.Get("X-Restli-Protocol-Version"))
		}
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["author"] != "urn:li:person:abc123" {
			t.Errorf("author: got %v", payload["author"])
		}
		w.Header().Set("X-RestLi-Id", "urn:li:share:99")
		w.WriteHeader(http.StatusCreated)
	})

	cr := newFakeCredentialRepo()
	s := newTestLinkedin(t, cr, mux)

	encAccess, err := utils.Encrypt([]byte("li-access"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := &models.Credential{AccountID: "abc123", AccessToken: encAccess}
	item := &models.ContentItem{GeneratedText: "a LinkedIn post"}

	postID, err := s.Publish(context.Background(), item, cred)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if postID != "urn:li:share:99" {
		t.Fatalf("post ID: got %q", postID)
	}
}

func TestLinkedinPublish_OversizedBody(t *testing.T) {
	t.Parallel()

	var requests int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	s := newTestLinkedin(t, newFakeCredentialRepo(), mux)

	item := &models.ContentItem{GeneratedText: strings.Repeat("x", LinkedinMaxPostLength+1)}

	_, err := s.Publish(context.Background(), item, &models.Credential{AccountID: "abc123"})
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected length error, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("oversized post reached the network: %d requests", requests)
	}
}

func TestLinkedinPublish_MultibyteBodyCountedInRunes(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RestLi-Id", "urn:li:share:7")
		w.WriteHeader(http.StatusCreated)
	})

	cr := newFakeCredentialRepo()
	s := newTestLinkedin(t, cr, mux)

	encAccess, err := utils.Encrypt([]byte("li-access"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := &models.Credential{AccountID: "abc123", AccessToken: encAccess}

	// 1500 runes but 4500 bytes; must pass the length check.
	item := &models.ContentItem{GeneratedText: strings.Repeat("日", 1500)}

	postID, err := s.Publish(context.Background(), item, cred)
	if err != nil {
		t.Fatalf("Publish rejected a %d-rune body: %v", 1500, err)
	}
	if postID != "urn:li:share:7" {
		t.Fatalf("post ID: got %q", postID)
	}

	over := &models.ContentItem{GeneratedText: strings.Repeat("日", LinkedinMaxPostLength+1)}
	if _, err := s.Publish(context.Background(), over, cred); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("expected length error for %d runes, got %v", LinkedinMaxPostLength+1, err)
	}
}

func TestLinkedinPublish_ImageFailureFallsBackToText(t *testing.T) {
	t.Parallel()

	var posted bool
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/assets", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"upload unavailable"}`, http.StatusInternalServerError)
	})
	mux.HandleFunc("/v2/ugcPosts", func(w http.ResponseWriter, r *http.Request) {
		posted = true
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		specific := payload["specificContent"].(map[string]interface{})
		share := specific["com.linkedin.ugc.ShareContent"].(map[string]interface{})
		if share["shareMediaCategory"] != "NONE" {
			t.Errorf("fallback post still references media: %v", share["shareMediaCategory"])
		}
		w.Header().Set("X-RestLi-Id", "urn:li:share:100")
		w.WriteHeader(http.StatusCreated)
	})

	cr := newFakeCredentialRepo()
	s := newTestLinkedin(t, cr, mux)

	encAccess, err := utils.Encrypt([]byte("li-access"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := &models.Credential{AccountID: "abc123", AccessToken: encAccess}
	item := &models.ContentItem{
		GeneratedText: "post with image",
		ImageURL:      "https://images.example.com/banner.png",
	}

	postID, err := s.Publish(context.Background(), item, cred)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if !posted {
		t.Fatalf("no post was created after the image failure")
	}
	if postID != "urn:li:share:100" {
		t.Fatalf("post ID: got %q", postID)
	}
}
