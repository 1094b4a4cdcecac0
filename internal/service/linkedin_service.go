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
	linkedinTokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
	linkedinAPIBase  = "https://api.linkedin.com"
)

// LinkedinMaxPostLength is the provider's hard cap on post commentary.
const LinkedinMaxPostLength = 3000

type LinkedinService interface {
	Callback(ctx context.Context, code string, userID int64) error
	Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error)
}

type linkedinService struct {
	cfg      config.Config
	cr       repository.CredentialRepository
	tokenURL string
	apiBase  string
	client   *http.Client
}

func NewLinkedinService(cfg config.Config, cr repository.CredentialRepository) LinkedinService {
	return &linkedinService{
		cfg:      cfg,
		cr:       cr,
		tokenURL: linkedinTokenURL,
		apiBase:  linkedinAPIBase,
		client:   http.DefaultClient,
	}
}

func (s *linkedinService) Callback(ctx context.Context, code string, userID int64) error {
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

	if s.cfg.LinkedinClientID == "" || s.cfg.LinkedinClientSecret == "" || s.cfg.LinkedinRedirectURI == "" {
		err = errors.New("LinkedIn OAuth configuration is incomplete")
		slog.Info(err.Error())
		return err
	}

	tokenResponse, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := s.getUserInfo(ctx, tokenResponse.AccessToken)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	// LinkedIn does not issue refresh tokens for standard applications;
	// RefreshToken stays empty and the credential expires into a re-auth.
	credential := &models.Credential{
		UserID:         userID,
		Platform:       models.PlatformLinkedin,
		AccountID:      userInfo.Sub,
		AccountName:    userInfo.Name,
		ProfilePicture: userInfo.Picture,
		AccessToken:    encryptedAccessToken,
		TokenType:      tokenResponse.TokenType,
		Scopes:         tokenResponse.Scope,
		TokenExpiresAt: GetExpiresAt(tokenResponse.ExpiresIn),
	}

	_, err = s.cr.Upsert(ctx, nil, credential)
	if err != nil {
		return err
	}

	return nil
}

func (s *linkedinService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.LinkedinTokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", s.cfg.LinkedinClientID)
	data.Set("client_secret", s.cfg.LinkedinClientSecret)
	data.Set("redirect_uri", s.cfg.LinkedinRedirectURI)

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
		return nil, providerFailure(models.PlatformLinkedin, resp.StatusCode, body)
	}

	var tokenResponse transfer.LinkedinTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

func (s *linkedinService) getUserInfo(ctx context.Context, accessToken string) (*transfer.LinkedinUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.apiBase+"/v2/userinfo", nil)
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
		return nil, providerFailure(models.PlatformLinkedin, resp.StatusCode, body)
	}

	var userInfo transfer.LinkedinUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

// Publish posts one content item to the member's feed. An image failure
// degrades to a text-only post; an oversized body is rejected before any
// network call.
func (s *linkedinService) Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error) {
	text := item.GeneratedText
	if utf8.RuneCountInString(text) > LinkedinMaxPostLength {
		return "", fmt.Errorf("post body exceeds LinkedIn limit of %d characters", LinkedinMaxPostLength)
	}

	accessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	var assetURN string
	if item.ImageURL != "" {
		assetURN, err = s.uploadImage(ctx, accessToken, cred.AccountID, item.ImageURL)
		if err != nil {
			slog.Info(fmt.Sprintf("LinkedIn image upload failed, posting text only: %v", err))
			assetURN = ""
		}
	}

	return s.createPost(ctx, accessToken, cred.AccountID, text, assetURN)
}

func (s *linkedinService) uploadImage(ctx context.Context, accessToken, accountID, imageURL string) (string, error) {
	registerPayload := map[string]interface{}{
		"registerUploadRequest": map[string]interface{}{
			"recipes": []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			"owner":   fmt.Sprintf("urn:li:person:%s", accountID),
			"serviceRelationships": []map[string]string{
				{
					"relationshipType": "OWNER",
					"identifier":       "urn:li:userGeneratedContent",
				},
			},
		},
	}

	body, err := json.Marshal(registerPayload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/v2/assets?action=registerUpload", bytes.NewBuffer(body))
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

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", providerFailure(models.PlatformLinkedin, resp.StatusCode, respBody)
	}

	var registerResp transfer.LinkedinRegisterUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&registerResp); err != nil {
		return "", fmt.Errorf("error parsing register upload response: %w", err)
	}

	uploadURL := registerResp.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	asset := registerResp.Value.Asset
	if uploadURL == "" || asset == "" {
		return "", errors.New("no upload target returned from LinkedIn")
	}

	imageBytes, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	putReq, err := http.NewRequestWithContext(ctx, "PUT", uploadURL, bytes.NewReader(imageBytes))
	if err != nil {
		return "", fmt.Errorf("error creating upload request: %w", err)
	}
	putReq.Header.Set("Authorization", "Bearer "+accessToken)

	putResp, err := s.client.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer putResp.Body.Close()

	if putResp.StatusCode != http.StatusOK && putResp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(putResp.Body)
		return "", providerFailure(models.PlatformLinkedin, putResp.StatusCode, respBody)
	}

	return asset, nil
}

func (s *linkedinService) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching source image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d fetching source image", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (s *linkedinService) createPost(ctx context.Context, accessToken, accountID, text, assetURN string) (string, error) {
	shareContent := map[string]interface{}{
		"shareCommentary": map[string]string{
			"text": text,
		},
		"shareMediaCategory": "NONE",
	}

	if assetURN != "" {
		shareContent["shareMediaCategory"] = "IMAGE"
		shareContent["media"] = []map[string]interface{}{
			{
				"status": "READY",
				"media":  assetURN,
			},
		}
	}

	payload := map[string]interface{}{
		"author":         fmt.Sprintf("urn:li:person:%s", accountID),
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/v2/ugcPosts", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", providerFailure(models.PlatformLinkedin, resp.StatusCode, respBody)
	}

	if id := resp.Header.Get("X-RestLi-Id"); id != "" {
		return id, nil
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("no post ID returned from LinkedIn")
	}

	return result.ID, nil
}
