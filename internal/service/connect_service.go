package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/pkg/utils"
)

const (
	LINKEDIN_AUTH_URL  = "https://www.linkedin.com/oauth/v2/authorization"
	TWITTER_AUTH_URL   = "https://twitter.com/i/oauth2/authorize"
	FACEBOOK_AUTH_URL  = "https://www.facebook.com/v21.0/dialog/oauth"
	INSTAGRAM_AUTH_URL = "https://www.instagram.com/oauth/authorize"
	GOOGLE_AUTH_URL    = "https://accounts.google.com/o/oauth2/v2/auth"
)

// awaitTimeout bounds how long a client may wait for an authorization
// round-trip to finish before the attempt is reported as timed out.
const awaitTimeout = 2 * time.Minute

type ConnectResult struct {
	Platform string `json:"platform"`
	Status   string `json:"status"` // connected, error, timeout
	Message  string `json:"message,omitempty"`
}

// pendingAuthorization is one in-flight connect attempt. The done channel is
// the single completion path replacing the popup/storage fallbacks of the
// original frontend relay.
type pendingAuthorization struct {
	nonce        string
	codeVerifier string
	claimed      bool
	done         chan ConnectResult
	created      time.Time
}

type ConnectService interface {
	AuthorizeURL(ctx context.Context, userID int64, platform string) (string, error)
	ClaimPending(state *OAuthState) (string, error)
	Complete(userID int64, platform string, result ConnectResult)
	Await(ctx context.Context, userID int64, platform string) ConnectResult
	List(ctx context.Context, userID int64) ([]*models.Credential, error)
	Disconnect(ctx context.Context, userID, credentialID int64) error
}

type connectService struct {
	cfg config.Config
	cr  repository.CredentialRepository

	mu      sync.Mutex
	pending map[string]*pendingAuthorization
}

func NewConnectService(cfg config.Config, cr repository.CredentialRepository) ConnectService {
	return &connectService{
		cfg:     cfg,
		cr:      cr,
		pending: make(map[string]*pendingAuthorization),
	}
}

func pendingKey(userID int64, platform string) string {
	return fmt.Sprintf("%s:%d", platform, userID)
}

func (s *connectService) AuthorizeURL(ctx context.Context, userID int64, platform string) (string, error) {
	if userID == 0 {
		return "", errors.New("UserID is not valid")
	}
	if !models.KnownPlatform(platform) {
		return "", fmt.Errorf("unknown platform %q", platform)
	}

	state := NewOAuthState(userID, platform)
	encodedState, err := state.Encode()
	if err != nil {
		return "", err
	}

	pa := &pendingAuthorization{
		nonce:   state.Nonce,
		done:    make(chan ConnectResult, 1),
		created: time.Now(),
	}

	var authURL string

	switch platform {
	case models.PlatformLinkedin:
		if s.cfg.LinkedinClientID == "" || s.cfg.LinkedinClientSecret == "" || s.cfg.LinkedinRedirectURI == "" {
			return "", errors.New("LinkedIn OAuth configuration is incomplete")
		}
		params := url.Values{}
		params.Add("response_type", "code")
		params.Add("client_id", s.cfg.LinkedinClientID)
		params.Add("redirect_uri", s.cfg.LinkedinRedirectURI)
		params.Add("scope", "openid profile email w_member_social")
		params.Add("state", encodedState)
		authURL = fmt.Sprintf("%s?%s", LINKEDIN_AUTH_URL, params.Encode())

	case models.PlatformTwitter:
		if s.cfg.TwitterClientID == "" || s.cfg.TwitterRedirectURI == "" {
			return "", errors.New("Twitter OAuth configuration is incomplete")
		}
		verifier, err := utils.GenerateCodeVerifier()
		if err != nil {
			return "", err
		}
		pa.codeVerifier = verifier

		params := url.Values{}
		params.Add("response_type", "code")
		params.Add("client_id", s.cfg.TwitterClientID)
		params.Add("redirect_uri", s.cfg.TwitterRedirectURI)
		params.Add("scope", "tweet.read tweet.write users.read offline.access")
		params.Add("state", encodedState)
		params.Add("code_challenge", utils.CodeChallengeS256(verifier))
		params.Add("code_challenge_method", "S256")
		authURL = fmt.Sprintf("%s?%s", TWITTER_AUTH_URL, params.Encode())

	case models.PlatformFacebook:
		if s.cfg.FacebookClientID == "" || s.cfg.FacebookClientSecret == "" || s.cfg.FacebookRedirectURI == "" {
			return "", errors.New("Facebook OAuth configuration is incomplete")
		}
		params := url.Values{}
		params.Add("response_type", "code")
		params.Add("client_id", s.cfg.FacebookClientID)
		params.Add("redirect_uri", s.cfg.FacebookRedirectURI)
		params.Add("scope", "pages_show_list,pages_read_engagement,pages_manage_posts")
		params.Add("state", encodedState)
		authURL = fmt.Sprintf("%s?%s", FACEBOOK_AUTH_URL, params.Encode())

	case models.PlatformInstagram:
		if s.cfg.InstagramClientID == "" || s.cfg.InstagramClientSecret == "" || s.cfg.InstagramRedirectURI == "" {
			return "", errors.New("Instagram OAuth configuration is incomplete")
		}
		params := url.Values{}
		params.Add("response_type", "code")
		params.Add("client_id", s.cfg.InstagramClientID)
		params.Add("redirect_uri", s.cfg.InstagramRedirectURI)
		params.Add("scope", "instagram_business_basic,instagram_business_content_publish")
		params.Add("state", encodedState)
		authURL = fmt.Sprintf("%s?%s", INSTAGRAM_AUTH_URL, params.Encode())

	case models.PlatformGDrive:
		if s.cfg.GoogleClientID == "" || s.cfg.GoogleClientSecret == "" || s.cfg.DriveRedirectURI == "" {
			return "", errors.New("Google OAuth configuration is incomplete")
		}
		params := url.Values{}
		params.Add("response_type", "code")
		params.Add("client_id", s.cfg.GoogleClientID)
		params.Add("redirect_uri", s.cfg.DriveRedirectURI)
		params.Add("scope", "https://www.googleapis.com/auth/userinfo.profile https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/drive.file")
		params.Add("state", encodedState)
		params.Add("access_type", "offline")
		params.Add("prompt", "consent")
		authURL = fmt.Sprintf("%s?%s", GOOGLE_AUTH_URL, params.Encode())
	}

	s.mu.Lock()
	s.sweepLocked()
	s.pending[pendingKey(userID, platform)] = pa
	s.mu.Unlock()

	return authURL, nil
}

// ClaimPending validates the state nonce against the registered attempt and
// marks it used. A second claim with the same state fails, so a state cannot
// be replayed. Returns the PKCE verifier for platforms that use one.
func (s *connectService) ClaimPending(state *OAuthState) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pa, ok := s.pending[pendingKey(state.UserID, state.Platform)]
	if !ok {
		return "", errors.New("no pending authorization for this state")
	}
	if pa.nonce != state.Nonce {
		return "", errors.New("authorization state does not match the pending attempt")
	}
	if pa.claimed {
		return "", errors.New("authorization state already used")
	}
	pa.claimed = true

	return pa.codeVerifier, nil
}

// Complete finishes a connect attempt and wakes any waiter. The buffered
// channel keeps the result when nobody is waiting yet.
func (s *connectService) Complete(userID int64, platform string, result ConnectResult) {
	s.mu.Lock()
	pa, ok := s.pending[pendingKey(userID, platform)]
	s.mu.Unlock()
	if !ok {
		return
	}

	select {
	case pa.done <- result:
	default:
	}
}

// Await blocks until the matching callback completes, the context is
// cancelled, or the timeout elapses.
func (s *connectService) Await(ctx context.Context, userID int64, platform string) ConnectResult {
	s.mu.Lock()
	pa, ok := s.pending[pendingKey(userID, platform)]
	s.mu.Unlock()
	if !ok {
		return ConnectResult{Platform: platform, Status: "error", Message: "no authorization in progress"}
	}

	timer := time.NewTimer(awaitTimeout)
	defer timer.Stop()

	var result ConnectResult
	select {
	case result = <-pa.done:
	case <-ctx.Done():
		result = ConnectResult{Platform: platform, Status: "error", Message: "request cancelled"}
	case <-timer.C:
		result = ConnectResult{Platform: platform, Status: "timeout", Message: "authorization timed out"}
	}

	s.mu.Lock()
	delete(s.pending, pendingKey(userID, platform))
	s.mu.Unlock()

	return result
}

// sweepLocked drops attempts older than the state validity window.
func (s *connectService) sweepLocked() {
	cutoff := time.Now().Add(-stateMaxAge)
	for key, pa := range s.pending {
		if pa.created.Before(cutoff) {
			delete(s.pending, key)
		}
	}
}

func (s *connectService) List(ctx context.Context, userID int64) ([]*models.Credential, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	credentials, err := s.cr.ListInfoByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting connected accounts")
	}

	return credentials, nil
}

func (s *connectService) Disconnect(ctx context.Context, userID, credentialID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	if credentialID == 0 {
		err = errors.New("CredentialID is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.cr.CheckByUserID(ctx, credentialID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Connected account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	credential, found, err := s.cr.GetByID(ctx, credentialID)
	if err != nil {
		return fmt.Errorf("Unable to get credential info")
	}
	if !found {
		err = errors.New("Connected account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if credential.Platform == models.PlatformGDrive {
		decryptedAccessToken, err := utils.Decrypt(credential.AccessToken, []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
		if err := RevokeGoogleAccess(decryptedAccessToken); err != nil {
			slog.Info(err.Error())
		}
	}

	err = s.cr.Remove(ctx, credentialID)
	if err != nil {
		return fmt.Errorf("Error removing credential")
	}

	return nil
}
