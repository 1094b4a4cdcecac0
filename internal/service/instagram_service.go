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
	"time"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/internal/transfer"
	"github.com/contentwell/contentwell/pkg/utils"
)

const (
	instagramAPIBase   = "https://api.instagram.com"
	instagramGraphBase = "https://graph.instagram.com"
)

type InstagramService interface {
	Callback(ctx context.Context, code string, userID int64) error
	Refresh(ctx context.Context, cred *models.Credential) error
	Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error)
}

type instagramService struct {
	cfg       config.Config
	cr        repository.CredentialRepository
	apiBase   string
	graphBase string
	client    *http.Client
}

func NewInstagramService(cfg config.Config, cr repository.CredentialRepository) InstagramService {
	return &instagramService{
		cfg:       cfg,
		cr:        cr,
		apiBase:   instagramAPIBase,
		graphBase: instagramGraphBase,
		client:    http.DefaultClient,
	}
}

func (ig *instagramService) Callback(ctx context.Context, code string, userID int64) (err error) {

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

	if ig.cfg.InstagramClientID == "" || ig.cfg.InstagramClientSecret == "" || ig.cfg.InstagramRedirectURI == "" {
		err = errors.New("Instagram OAuth configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	token, err := ig.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := ig.getUserInfo(ctx, token.LongLivedToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	// The long-lived token doubles as its own refresh handle.
	credential := &models.Credential{
		UserID:          userID,
		Platform:        models.PlatformInstagram,
		AccountID:       userInfo.UserID,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Username,
		ProfilePicture:  userInfo.ProfilePicture,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedAccessToken,
		TokenExpiresAt:  token.ExpiresAt,
	}

	_, err = ig.cr.Upsert(ctx, nil, credential)
	if err != nil {
		return err
	}

	return nil
}

func (ig *instagramService) getShortLivedToken(ctx context.Context, code string) (*transfer.InstagramToken, error) {
	data := url.Values{}
	data.Set("client_id", ig.cfg.InstagramClientID)
	data.Set("client_secret", ig.cfg.InstagramClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", ig.cfg.InstagramRedirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, "POST", ig.apiBase+"/oauth/access_token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to get short-lived token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, providerFailure(models.PlatformInstagram, resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		UserID      int    `json:"user_id"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	token := &transfer.InstagramToken{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	return token, nil
}

func (ig *instagramService) getLongLivedToken(ctx context.Context, shortLivedToken string) (string, time.Time, error) {
	requestURL := fmt.Sprintf(
		"%s/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		ig.graphBase,
		ig.cfg.InstagramClientSecret,
		shortLivedToken,
	)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return "", time.Time{}, err
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", time.Time{}, fmt.Errorf("failed to get long-lived token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", time.Time{}, providerFailure(models.PlatformInstagram, resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", time.Time{}, fmt.Errorf("failed to decode long-lived token response: %w", err)
	}

	return result.AccessToken, time.Now().Add(time.Second * time.Duration(result.ExpiresIn)), nil
}

func (ig *instagramService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.InstagramToken, error) {

	shortLivedToken, err := ig.getShortLivedToken(ctx, code)
	if err != nil {
		return nil, err
	}

	longLivedToken, expiresAt, err := ig.getLongLivedToken(ctx, shortLivedToken.AccessToken)
	if err != nil {
		return nil, err
	}

	token := &transfer.InstagramToken{
		AccessToken:    longLivedToken,
		LongLivedToken: longLivedToken,
		ExpiresAt:      expiresAt,
	}

	return token, nil
}

func (ig *instagramService) getUserInfo(ctx context.Context, accessToken string) (*transfer.InstagramUserInfo, error) {
	var userInfo transfer.InstagramUserInfo

	requestURL := fmt.Sprintf(
		"%s/me?fields=id,username,name,account_type,profile_picture_url&access_token=%s",
		ig.graphBase,
		accessToken,
	)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, providerFailure(models.PlatformInstagram, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

func (ig *instagramService) Refresh(ctx context.Context, cred *models.Credential) error {

	decryptedRefreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	requestURL := fmt.Sprintf(
		"%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		ig.graphBase,
		decryptedRefreshToken,
	)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return err
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return providerFailure(models.PlatformInstagram, resp.StatusCode, body)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(ig.cfg.SecretKey))
	if err != nil {
		return err
	}

	return ig.cr.UpdateToken(ctx, cred.ID, encryptedAccessToken, encryptedAccessToken, expiresAt)
}

// Publish creates a media container from the item's image and publishes it.
// Instagram cannot post bare text, so items without an image are rejected
// before any request is made.
func (ig *instagramService) Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error) {
	if item.ImageURL == "" {
		return "", ErrImageRequired
	}

	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(ig.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	containerID, err := ig.createMediaContainer(ctx, cred.AccountID, item.ImageURL, item.GeneratedText, accessToken)
	if err != nil {
		return "", err
	}

	return ig.publishContainer(ctx, cred.AccountID, containerID, accessToken)
}

func (ig *instagramService) createMediaContainer(ctx context.Context, accountID, imageURL, caption, accessToken string) (string, error) {
	requestURL := fmt.Sprintf("%s/v21.0/%s/media", ig.graphBase, accountID)

	payload := map[string]interface{}{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": accessToken,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ig.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", providerFailure(models.PlatformInstagram, resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if result.ID == "" {
		return "", errors.New("no media ID returned from Instagram")
	}

	return result.ID, nil
}

func (ig *instagramService) publishContainer(ctx context.Context, accountID, containerID, accessToken string) (string, error) {
	requestURL := fmt.Sprintf("%s/v21.0/%s/media_publish", ig.graphBase, accountID)

	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": accessToken,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ig.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", providerFailure(models.PlatformInstagram, resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	if result.ID == "" {
		return "", errors.New("no media ID returned from Instagram")
	}

	return result.ID, nil
}
