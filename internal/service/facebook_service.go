package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/contentwell/contentwell/pkg/utils"
)

const facebookGraphBase = "https://graph.facebook.com/v21.0"

type FacebookService interface {
	Callback(ctx context.Context, code string, userID int64) error
	Refresh(ctx context.Context, cred *models.Credential) error
	Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error)
}

type facebookService struct {
	cfg       config.Config
	cr        repository.CredentialRepository
	graphBase string
	client    *http.Client
}

func NewFacebookService(cfg config.Config, cr repository.CredentialRepository) FacebookService {
	return &facebookService{
		cfg:       cfg,
		cr:        cr,
		graphBase: facebookGraphBase,
		client:    http.DefaultClient,
	}
}

// Callback exchanges the code, upgrades to a long-lived user token, and
// records the user's first managed Page. Posting always goes through the
// Page token kept in the credential metadata.
func (s *facebookService) Callback(ctx context.Context, code string, userID int64) error {
	var err error

	if code == "" {
		err = errors.New("code or state is empty")
		slog.Info(err.Error())
		return err
	}

	if userID == 0 {
		err = errors.New("User not found")
		slog.Info(err.Error())
		return err
	}

	if s.cfg.FacebookClientID == "" || s.cfg.FacebookClientSecret == "" || s.cfg.FacebookRedirectURI == "" {
		err = errors.New("Facebook OAuth configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	shortToken, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	longToken, err := s.exchangeForLongLivedToken(ctx, shortToken.AccessToken)
	if err != nil {
		return err
	}

	userInfo, err := s.getUserInfo(ctx, longToken.AccessToken)
	if err != nil {
		return err
	}

	page, err := s.getFirstPage(ctx, longToken.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(longToken.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedPageToken, err := utils.Encrypt([]byte(page.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(transfer.FacebookPageMetadata{
		PageID:    page.ID,
		PageName:  page.Name,
		PageToken: encryptedPageToken,
	})
	if err != nil {
		return err
	}

	credential := &models.Credential{
		UserID:         userID,
		Platform:       models.PlatformFacebook,
		AccountID:      userInfo.ID,
		AccountName:    userInfo.Name,
		ProfilePicture: userInfo.Picture.Data.URL,
		AccessToken:    encryptedAccessToken,
		TokenType:      longToken.TokenType,
		TokenExpiresAt: GetExpiresAt(longToken.ExpiresIn),
		Metadata:       string(metadata),
	}

	_, err = s.cr.Upsert(ctx, nil, credential)
	if err != nil {
		return err
	}

	return nil
}

func (s *facebookService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.FacebookTokenResponse, error) {
	params := url.Values{}
	params.Set("client_id", s.cfg.FacebookClientID)
	params.Set("client_secret", s.cfg.FacebookClientSecret)
	params.Set("redirect_uri", s.cfg.FacebookRedirectURI)
	params.Set("code", code)

	return s.tokenRequest(ctx, s.graphBase+"/oauth/access_token?"+params.Encode())
}

func (s *facebookService) exchangeForLongLivedToken(ctx context.Context, shortToken string) (*transfer.FacebookTokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.FacebookClientID)
	params.Set("client_secret", s.cfg.FacebookClientSecret)
	params.Set("fb_exchange_token", shortToken)

	return s.tokenRequest(ctx, s.graphBase+"/oauth/access_token?"+params.Encode())
}

func (s *facebookService) tokenRequest(ctx context.Context, requestURL string) (*transfer.FacebookTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, providerFailure(models.PlatformFacebook, resp.StatusCode, body)
	}

	var tokenResponse transfer.FacebookTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

func (s *facebookService) getUserInfo(ctx context.Context, accessToken string) (*transfer.FacebookUserInfo, error) {
	requestURL := fmt.Sprintf("%s/me?fields=id,name,picture&access_token=%s", s.graphBase, url.QueryEscape(accessToken))

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, providerFailure(models.PlatformFacebook, resp.StatusCode, body)
	}

	var userInfo transfer.FacebookUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

func (s *facebookService) getFirstPage(ctx context.Context, accessToken string) (*transfer.FacebookPage, error) {
	requestURL := fmt.Sprintf("%s/me/accounts?access_token=%s", s.graphBase, url.QueryEscape(accessToken))

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, providerFailure(models.PlatformFacebook, resp.StatusCode, body)
	}

	var pages transfer.FacebookPagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if len(pages.Data) == 0 {
		return nil, errors.New("no Facebook Page found for this account")
	}

	return &pages.Data[0], nil
}

// Refresh re-runs the long-lived exchange on the current user token and
// re-reads the Page token, since Page tokens are derived from it.
func (s *facebookService) Refresh(ctx context.Context, cred *models.Credential) error {
	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	longToken, err := s.exchangeForLongLivedToken(ctx, accessToken)
	if err != nil {
		return err
	}

	page, err := s.getFirstPage(ctx, longToken.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(longToken.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedPageToken, err := utils.Encrypt([]byte(page.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	metadata, err := json.Marshal(transfer.FacebookPageMetadata{
		PageID:    page.ID,
		PageName:  page.Name,
		PageToken: encryptedPageToken,
	})
	if err != nil {
		return err
	}

	credential := *cred
	credential.AccessToken = encryptedAccessToken
	credential.TokenExpiresAt = GetExpiresAt(longToken.ExpiresIn)
	credential.Metadata = string(metadata)

	_, err = s.cr.Upsert(ctx, nil, &credential)
	return err
}

// Publish posts to the connected Page: a photo post when the item carries an
// image, a plain feed post otherwise. A failed photo post falls back to a
// feed post linking the image.
func (s *facebookService) Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error) {
	if cred.Metadata == "" {
		return "", errors.New("no Facebook Page metadata on credential")
	}

	var meta transfer.FacebookPageMetadata
	if err := json.Unmarshal([]byte(cred.Metadata), &meta); err != nil {
		return "", fmt.Errorf("failed to decode page metadata: %w", err)
	}

	pageToken, err := utils.Decrypt(meta.PageToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	if item.ImageURL != "" {
		data := url.Values{}
		data.Set("access_token", pageToken)
		data.Set("url", item.ImageURL)
		data.Set("caption", item.GeneratedText)

		postID, err := s.pagePost(ctx, fmt.Sprintf("%s/%s/photos", s.graphBase, meta.PageID), data)
		if err == nil {
			return postID, nil
		}
		slog.Info(fmt.Sprintf("Facebook photo post failed, falling back to feed: %v", err))

		feed := url.Values{}
		feed.Set("access_token", pageToken)
		feed.Set("message", item.GeneratedText)
		feed.Set("link", item.ImageURL)
		return s.pagePost(ctx, fmt.Sprintf("%s/%s/feed", s.graphBase, meta.PageID), feed)
	}

	data := url.Values{}
	data.Set("access_token", pageToken)
	data.Set("message", item.GeneratedText)
	return s.pagePost(ctx, fmt.Sprintf("%s/%s/feed", s.graphBase, meta.PageID), data)
}

func (s *facebookService) pagePost(ctx context.Context, endpoint string, data url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", providerFailure(models.PlatformFacebook, resp.StatusCode, respBody)
	}

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if result.PostID != "" {
		return result.PostID, nil
	}
	if result.ID == "" {
		return "", errors.New("no post ID returned from Facebook")
	}
	return result.ID, nil
}
