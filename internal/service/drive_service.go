package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/contentwell/contentwell/configs"
	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
	"github.com/contentwell/contentwell/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type DriveService interface {
	Callback(ctx context.Context, code string, userID int64) error
	Refresh(ctx context.Context, cred *models.Credential) error
	Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error)
}

type driveService struct {
	cfg config.Config
	cr  repository.CredentialRepository
}

func NewDriveService(cfg config.Config, cr repository.CredentialRepository) DriveService {
	return &driveService{
		cfg: cfg,
		cr:  cr,
	}
}

func (s *driveService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.DriveRedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/drive.file",
		},
		Endpoint: google.Endpoint,
	}
}

func (s *driveService) Callback(ctx context.Context, code string, userID int64) (err error) {

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

	oauth2Config := s.oauthConfig()

	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" || oauth2Config.RedirectURL == "" {
		err = errors.New("OAuth2 configration is incomplete")
		slog.Info(err.Error())
		return err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	if token.RefreshToken == "" {
		err = errors.New("refresh token is empty")
		slog.Info(err.Error())
		return err
	}

	client := oauth2Config.Client(ctx, token)
	userInfo, err := GetUserInfo(client)
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	encryptedRefreshToken, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	credential := &models.Credential{
		UserID:          userID,
		Platform:        models.PlatformGDrive,
		AccountID:       userInfo.ID,
		AccountName:     userInfo.Name,
		AccountUsername: userInfo.Email,
		ProfilePicture:  userInfo.Picture,
		AccessToken:     encryptedAccessToken,
		RefreshToken:    encryptedRefreshToken,
		TokenExpiresAt:  token.Expiry,
	}

	_, err = s.cr.Upsert(ctx, nil, credential)
	if err != nil {
		return err
	}

	return nil
}

func (s *driveService) Refresh(ctx context.Context, cred *models.Credential) error {
	if !cred.HasRefreshToken() {
		return ErrTokenExpired
	}

	decryptedRefreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	tokenSource := s.oauthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: decryptedRefreshToken})

	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.cr.UpdateToken(ctx, cred.ID, encryptedAccessToken, "", token.Expiry)
}

// Publish writes the item's text to the user's Drive as a Google Doc and
// returns the created file ID. Plain text is converted on upload, so the
// document is editable in Docs immediately.
func (s *driveService) Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error) {
	decryptedAccessToken, err := utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	token := &oauth2.Token{
		AccessToken: decryptedAccessToken,
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("error creating Drive service: %w", err)
	}

	file := &drive.File{
		Name:     documentName(item),
		MimeType: "application/vnd.google-apps.document",
	}

	created, err := driveSvc.Files.Create(file).
		Media(strings.NewReader(item.GeneratedText)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("error uploading document: %w", err)
	}

	return created.Id, nil
}

func documentName(item *models.ContentItem) string {
	firstLine := item.GeneratedText
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	firstLine = strings.TrimSpace(strings.TrimLeft(firstLine, "# "))
	if firstLine == "" {
		return fmt.Sprintf("%s %d", item.ContentType, item.ID)
	}
	if len(firstLine) > 80 {
		firstLine = firstLine[:80]
	}
	return firstLine
}
