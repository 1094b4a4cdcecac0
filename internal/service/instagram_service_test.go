package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/pkg/utils"
)

func newTestInstagram(t *testing.T, cr *fakeCredentialRepo, handler http.Handler) *instagramService {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		InstagramClientID:     "ig-client",
		InstagramClientSecret: "ig-secret",
		InstagramRedirectURI:  "https://api.example.com/auth/instagram/callback",
		SecretKey:             "0123456789abcdef0123456789abcdef",
	}

	return &instagramService{
		cfg:       cfg,
		cr:        cr,
		apiBase:   srv.URL,
		graphBase: srv.URL,
		client:    srv.Client(),
	}
}

func TestInstagramPublish_RequiresImage(t *testing.T) {
	t.Parallel()

	var requests int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	s := newTestInstagram(t, newFakeCredentialRepo(), mux)

	item := &models.ContentItem{GeneratedText: "caption only"}
	_, err := s.Publish(context.Background(), item, &models.Credential{AccountID: "ig-1"})
	if !errors.Is(err, ErrImageRequired) {
		t.Fatalf("expected ErrImageRequired, got %v", err)
	}
	if requests != 0 {
		t.Fatalf("image-less publish reached the network: %d requests", requests)
	}
}

func TestInstagramPublish(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/v21.0/ig-1/media", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["image_url"] != "https://images.example.com/pic.png" {
			t.Errorf("image_url: got %v", payload["image_url"])
		}
		if payload["caption"] != "the caption" {
			t.Errorf("caption: got %v", payload["caption"])
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
	})
	mux.HandleFunc("/v21.0/ig-1/media_publish", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload["creation_id"] != "container-1" {
			t.Errorf("creation_id: got %q", payload["creation_id"])
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "media-9"})
	})

	cr := newFakeCredentialRepo()
	s := newTestInstagram(t, cr, mux)

	encAccess, err := utils.Encrypt([]byte("ig-access"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := &models.Credential{AccountID: "ig-1", AccessToken: encAccess}
	item := &models.ContentItem{
		GeneratedText: "the caption",
		ImageURL:      "https://images.example.com/pic.png",
	}

	postID, err := s.Publish(context.Background(), item, cred)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if postID != "media-9" {
		t.Fatalf("post ID: got %q want media-9", postID)
	}
}

func TestInstagramRefresh(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh_access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "ig_refresh_token" {
			t.Errorf("grant_type: got %q", r.URL.Query().Get("grant_type"))
		}
		if r.URL.Query().Get("access_token") != "long-lived" {
			t.Errorf("access_token: got %q", r.URL.Query().Get("access_token"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "renewed",
			"expires_in":   5184000,
		})
	})

	cr := newFakeCredentialRepo()
	s := newTestInstagram(t, cr, mux)

	enc, err := utils.Encrypt([]byte("long-lived"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := cr.add(&models.Credential{
		UserID:       1,
		Platform:     models.PlatformInstagram,
		AccessToken:  enc,
		RefreshToken: enc,
	})

	if err := s.Refresh(context.Background(), cred); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	stored, _, _ := cr.GetByID(context.Background(), cred.ID)
	access, err := utils.Decrypt(stored.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("stored access token does not decrypt: %v", err)
	}
	if access != "renewed" {
		t.Fatalf("access token: got %q want renewed", access)
	}
	// The renewed token keeps doubling as its own refresh handle.
	if stored.RefreshToken != stored.AccessToken {
		t.Fatalf("refresh token diverged from the access token")
	}
}

func TestInstagramRefresh_ProviderRejection(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/refresh_access_token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	})

	cr := newFakeCredentialRepo()
	s := newTestInstagram(t, cr, mux)

	enc, err := utils.Encrypt([]byte("stale"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := &models.Credential{RefreshToken: enc}

	err = s.Refresh(context.Background(), cred)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
