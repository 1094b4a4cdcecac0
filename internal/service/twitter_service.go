package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/contentwell/contentwell/pkg/utils"
)

const (
	twitterTokenURL = "https://api.x.com/2/oauth2/token"
	twitterAPIBase  = "https://api.x.com"
)

// TweetMaxLength is the character cap applied before posting.
const TweetMaxLength = 280

type TwitterService interface {
	Callback(ctx context.Context, code, codeVerifier string, userID int64) error
	Refresh(ctx context.Context, cred *models.Credential) error
	Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error)
}

type twitterService struct {
	cfg      config.Config
	cr       repository.CredentialRepository
	tokenURL string
	apiBase  string
	client   *http.Client
}

func NewTwitterService(cfg config.Config, cr repository.CredentialRepository) TwitterService {
	return &twitterService{
		cfg:      cfg,
		cr:       cr,
		tokenURL: twitterTokenURL,
		apiBase:  twitterAPIBase,
		client:   http.DefaultClient,
	}
}

func (s *twitterService) Callback(ctx context.Context, code, codeVerifier string, userID int64) error {
	var err error

	if code == "" || codeVerifier == "" {
		err = errors.New("code or verifier is empty")
		slog.Info(err.Error())
		return err
	}

	if userID == 0 {
		err = errors.New("User not found")
		slog.Info(err.Error())
		return err
	}

	if s.cfg.TwitterClientID == "" || s.cfg.TwitterRedirectURI == "" {
		err = errors.New("Twitter OAuth configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	// Public client with PKCE, so the verifier stands in for a secret.
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", s.cfg.TwitterClientID)
	data.Set("redirect_uri", s.cfg.TwitterRedirectURI)
	data.Set("code_verifier", codeVerifier)

	tokenResponse, err := s.requestToken(ctx, data)
	if err != nil {
		return err
	}

	user, err := s.getUser(ctx, tokenResponse.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken := ""
	if tokenResponse.RefreshToken != "" {
		encryptedRefreshToken, err = utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	credential := &models.Credential{
		UserID:          userID,
		Platform:        models.PlatformTwitter,
		AccountID:       user.Data.ID,
		AccountName:     user.Data.Name,
		AccountUsername: user.Data.Username,
		ProfilePicture:  user.Data.ProfileImageURL,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenType:       tokenResponse.TokenType,
		Scopes:          tokenResponse.Scope,
		TokenExpiresAt:  GetExpiresAt(tokenResponse.ExpiresIn),
	}

	_, err = s.cr.Upsert(ctx, nil, credential)
	if err != nil {
		return err
	}

	return nil
}

// Refresh swaps the stored refresh token for a new token pair. Twitter
// rotates refresh tokens on every use, so both values are rewritten.
func (s *twitterService) Refresh(ctx context.Context, cred *models.Credential) error {
	if !cred.HasRefreshToken() {
		return ErrTokenExpired
	}

	refreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", s.cfg.TwitterClientID)

	tokenResponse, err := s.requestToken(ctx, data)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken := ""
	if tokenResponse.RefreshToken != "" {
		encryptedRefreshToken, err = utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
	}

	return s.cr.UpdateToken(ctx, cred.ID, encryptedAccessToken, encryptedRefreshToken, GetExpiresAt(tokenResponse.ExpiresIn))
}

func (s *twitterService) requestToken(ctx context.Context, data url.Values) (*transfer.TwitterTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, providerFailure(models.PlatformTwitter, resp.StatusCode, body)
	}

	var tokenResponse transfer.TwitterTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

func (s *twitterService) getUser(ctx context.Context, accessToken string) (*transfer.TwitterUserResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.apiBase+"/2/users/me?user.fields=profile_image_url", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, providerFailure(models.PlatformTwitter, resp.StatusCode, body)
	}

	var user transfer.TwitterUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &user, nil
}

// Publish posts the item as a single tweet. When the item carries an image
// the URL is appended after the text, and the text is truncated so the whole
// tweet stays within the 280-character cap.
func (s *twitterService) Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error) {
	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	text := composeTweet(item.GeneratedText, item.ImageURL, TweetMaxLength)

	payload := transfer.TweetRequest{Text: text}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/2/tweets", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", providerFailure(models.PlatformTwitter, resp.StatusCode, respBody)
	}

	var result transfer.TweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.Data.ID == "" {
		return "", errors.New("no tweet ID returned from Twitter")
	}

	return result.Data.ID, nil
}

// composeTweet reserves room for the image URL and a separating space, then
// truncates the text into whatever remains of the limit.
func composeTweet(text, imageURL string, limit int) string {
	if imageURL == "" {
		return truncateTweet(text, limit)
	}
	budget := limit - utf8.RuneCountInString(imageURL) - 1
	if budget < 1 {
		return truncateTweet(imageURL, limit)
	}
	return truncateTweet(text, budget) + " " + imageURL
}

func truncateTweet(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
