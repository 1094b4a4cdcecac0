package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/contentwell/contentwell/pkg/utils"
)

func newTestTwitter(t *testing.T, cr *fakeCredentialRepo, handler http.Handler) *twitterService {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Config{
		TwitterClientID:    "tw-client",
		TwitterRedirectURI: "https://api.example.com/auth/twitter/callback",
		SecretKey:          "0123456789abcdef0123456789abcdef",
	}

	return &twitterService{
		cfg:      cfg,
		cr:       cr,
		tokenURL: srv.URL + "/2/oauth2/token",
		apiBase:  srv.URL,
		client:   srv.Client(),
	}
}

func TestTwitterCallback(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/2/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
		}
		if r.Form.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type: got %q", r.Form.Get("grant_type"))
		}
		if r.Form.Get("code_verifier") == "" {
			t.Errorf("no code_verifier in the token request")
		}
		if r.Form.Get("client_secret") != "" {
			t.Errorf("public client must not send a client secret")
		}
		json.NewEncoder(w).Encode(transfer.TwitterTokenResponse{
			AccessToken:  "access-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    7200,
			TokenType:    "bearer",
			Scope:        "tweet.read tweet.write users.read offline.access",
		})
	})
	mux.HandleFunc("/2/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			t.Errorf("authorization header: got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(transfer.TwitterUserResponse{
			Data: transfer.TwitterUser{ID: "12345", Name: "Ada", Username: "ada"},
		})
	})

	cr := newFakeCredentialRepo()
	s := newTestTwitter(t, cr, mux)

	if err := s.Callback(context.Background(), "the-code", "the-verifier", 1); err != nil {
		t.Fatalf("Callback error: %v", err)
	}

	if len(cr.upserted) != 1 {
		t.Fatalf("upserted credentials: got %d want 1", len(cr.upserted))
	}
	cred := cr.upserted[0]
	if cred.Platform != models.PlatformTwitter || cred.AccountID != "12345" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if cred.AccessToken == "access-token" || cred.RefreshToken == "refresh-token" {
		t.Fatalf("tokens stored unencrypted")
	}

	decrypted, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("stored access token does not decrypt: %v", err)
	}
	if decrypted != "access-token" {
		t.Fatalf("decrypted token: got %q", decrypted)
	}
}

func TestTwitterCallback_MissingInput(t *testing.T) {
	t.Parallel()

	s := newTestTwitter(t, newFakeCredentialRepo(), http.NewServeMux())

	if err := s.Callback(context.Background(), "", "verifier", 1); err == nil {
		t.Fatalf("expected error for empty code, got nil")
	}
	if err := s.Callback(context.Background(), "code", "", 1); err == nil {
		t.Fatalf("expected error for empty verifier, got nil")
	}
	if err := s.Callback(context.Background(), "code", "verifier", 0); err == nil {
		t.Fatalf("expected error for missing user, got nil")
	}
}

func TestTwitterRefresh(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/2/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("bad form: %v", err)
		}
		if r.Form.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type: got %q", r.Form.Get("grant_type"))
		}
		if r.Form.Get("refresh_token") != "old-refresh" {
			t.Errorf("refresh_token: got %q", r.Form.Get("refresh_token"))
		}
		json.NewEncoder(w).Encode(transfer.TwitterTokenResponse{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    7200,
		})
	})

	cr := newFakeCredentialRepo()
	s := newTestTwitter(t, cr, mux)

	encRefresh, err := utils.Encrypt([]byte("old-refresh"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := cr.add(&models.Credential{
		UserID:       1,
		Platform:     models.PlatformTwitter,
		RefreshToken: encRefresh,
	})

	if err := s.Refresh(context.Background(), cred); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	stored, _, _ := cr.GetByID(context.Background(), cred.ID)
	access, err := utils.Decrypt(stored.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("stored access token does not decrypt: %v", err)
	}
	if access != "new-access" {
		t.Fatalf("access token: got %q want new-access", access)
	}
	refresh, err := utils.Decrypt(stored.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("stored refresh token does not decrypt: %v", err)
	}
	if refresh != "new-refresh" {
		t.Fatalf("rotated refresh token: got %q want new-refresh", refresh)
	}
}

func TestTwitterRefresh_NoRefreshToken(t *testing.T) {
	t.Parallel()

	s := newTestTwitter(t, newFakeCredentialRepo(), http.NewServeMux())

	err := s.Refresh(context.Background(), &models.Credential{Platform: models.PlatformTwitter})
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTwitterPublish(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		var payload transfer.TweetRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if payload.Text != "hello world" {
			t.Errorf("tweet text: got %q", payload.Text)
		}
		w.WriteHeader(http.StatusCreated)
		resp := transfer.TweetResponse{}
		resp.Data.ID = "tweet-1"
		json.NewEncoder(w).Encode(resp)
	})

	cr := newFakeCredentialRepo()
	s := newTestTwitter(t, cr, mux)

	encAccess, err := utils.Encrypt([]byte("access-token"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := &models.Credential{AccessToken: encAccess}
	item := &models.ContentItem{GeneratedText: "hello world"}

	postID, err := s.Publish(context.Background(), item, cred)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if postID != "tweet-1" {
		t.Fatalf("post ID: got %q want tweet-1", postID)
	}
}

func TestTwitterPublish_AppendsImageURL(t *testing.T) {
	t.Parallel()

	imageURL := "https://images.example.com/pic.png"

	var posted string
	mux := http.NewServeMux()
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		var payload transfer.TweetRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		posted = payload.Text
		w.WriteHeader(http.StatusCreated)
		resp := transfer.TweetResponse{}
		resp.Data.ID = "tweet-2"
		json.NewEncoder(w).Encode(resp)
	})

	cr := newFakeCredentialRepo()
	s := newTestTwitter(t, cr, mux)

	encAccess, err := utils.Encrypt([]byte("access-token"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	cred := &models.Credential{AccessToken: encAccess}
	item := &models.ContentItem{
		GeneratedText: strings.Repeat("x", 279),
		ImageURL:      imageURL,
	}

	if _, err := s.Publish(context.Background(), item, cred); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if !strings.HasSuffix(posted, " "+imageURL) {
		t.Fatalf("image URL not appended to the tweet: %q", posted)
	}
	if utf8.RuneCountInString(posted) > TweetMaxLength {
		t.Fatalf("tweet over the cap: %d runes", utf8.RuneCountInString(posted))
	}
	want := truncateTweet(item.GeneratedText, TweetMaxLength-utf8.RuneCountInString(imageURL)-1) + " " + imageURL
	if posted != want {
		t.Fatalf("tweet text:\n got %q\nwant %q", posted, want)
	}
}

func TestTwitterPublish_Unauthorized(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Unauthorized"}`, http.StatusUnauthorized)
	})

	cr := newFakeCredentialRepo()
	s := newTestTwitter(t, cr, mux)

	encAccess, err := utils.Encrypt([]byte("stale-token"), []byte(s.cfg.SecretKey))
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	_, err = s.Publish(context.Background(), &models.ContentItem{GeneratedText: "x"}, &models.Credential{AccessToken: encAccess})
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTruncateTweet(t *testing.T) {
	t.Parallel()

	short := "a short tweet"
	if got := truncateTweet(short, TweetMaxLength); got != short {
		t.Fatalf("short text changed: %q", got)
	}

	long := strings.Repeat("日本語テキスト", 60)
	got := truncateTweet(long, TweetMaxLength)
	if utf8.RuneCountInString(got) != TweetMaxLength {
		t.Fatalf("truncated length: got %d want %d", utf8.RuneCountInString(got), TweetMaxLength)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated text lacks the ellipsis: %q", got)
	}

	exact := strings.Repeat("x", TweetMaxLength)
	if got := truncateTweet(exact, TweetMaxLength); got != exact {
		t.Fatalf("text at the limit changed")
	}
}

func TestComposeTweet(t *testing.T) {
	t.Parallel()

	url := "https://images.example.com/pic.png"

	if got := composeTweet("hello", "", TweetMaxLength); got != "hello" {
		t.Fatalf("no-image tweet changed: %q", got)
	}

	if got := composeTweet("hello", url, TweetMaxLength); got != "hello "+url {
		t.Fatalf("short text with image: got %q", got)
	}

	long := strings.Repeat("x", 400)
	got := composeTweet(long, url, TweetMaxLength)
	if utf8.RuneCountInString(got) > TweetMaxLength {
		t.Fatalf("composed tweet over the cap: %d runes", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, " "+url) {
		t.Fatalf("composed tweet lacks the URL: %q", got)
	}
}
