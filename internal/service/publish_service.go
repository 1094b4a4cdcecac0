package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
)

// Publisher posts one content item through an already-validated credential
// and returns the provider's post ID. Each platform service implements it.
type Publisher interface {
	Publish(ctx context.Context, item *models.ContentItem, cred *models.Credential) (string, error)
}

type PublishService interface {
	Publish(ctx context.Context, itemID int64) error
	PublishForUser(ctx context.Context, userID, itemID int64, platform string) error
	History(ctx context.Context, userID int64) ([]*models.PublishHistory, error)
}

type publishService struct {
	ci         repository.ContentItemRepository
	cr         repository.CredentialRepository
	ph         repository.PublishHistoryRepository
	publishers map[string]Publisher
	now        func() time.Time
}

func NewPublishService(
	ci repository.ContentItemRepository,
	cr repository.CredentialRepository,
	ph repository.PublishHistoryRepository,
	publishers map[string]Publisher) PublishService {
	return &publishService{
		ci:         ci,
		cr:         cr,
		ph:         ph,
		publishers: publishers,
		now:        time.Now,
	}
}

// PublishForUser is the API entry point: it verifies ownership, pins the
// platform when the item carries none, then dispatches.
func (s *publishService) PublishForUser(ctx context.Context, userID, itemID int64, platform string) error {
	isUsers, err := s.ci.CheckByUserID(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if !isUsers {
		return errors.New("content item not found")
	}

	item, err := s.ci.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if item.Platform == "" {
		if platform == "" {
			return errors.New("no target platform for this item")
		}
		if !models.KnownPlatform(platform) {
			return fmt.Errorf("unknown platform: %s", platform)
		}
		item.Platform = platform
	}

	return s.dispatch(ctx, item)
}

// Publish is the worker entry point for queued publish tasks.
func (s *publishService) Publish(ctx context.Context, itemID int64) error {
	item, err := s.ci.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if item.Status == models.ContentStatusPublished {
		return nil
	}

	return s.dispatch(ctx, item)
}

// dispatch resolves the credential and hands the item to the platform
// publisher. Every outcome, success or failure, lands in publish history.
func (s *publishService) dispatch(ctx context.Context, item *models.ContentItem) error {
	if item.Platform == "" {
		return errors.New("no target platform for this item")
	}

	cred, found, err := s.cr.GetByUserAndPlatform(ctx, item.UserID, item.Platform)
	if err != nil {
		return err
	}
	if !found {
		return s.recordFailure(ctx, item, ErrNotConnected)
	}

	// An expired token never reaches the provider. The cron job owns
	// refresh; credentials it cannot refresh get flagged for re-auth.
	if cred.Expired(s.now()) {
		if !cred.HasRefreshToken() {
			if err := s.cr.SetStatus(ctx, cred.ID, models.CredentialStatusReauthNeeded); err != nil {
				slog.Info(err.Error())
			}
		}
		return s.recordFailure(ctx, item, ErrTokenExpired)
	}

	publisher, ok := s.publishers[item.Platform]
	if !ok {
		return s.recordFailure(ctx, item, fmt.Errorf("no publisher for platform %s", item.Platform))
	}

	providerPostID, err := publisher.Publish(ctx, item, cred)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			if serr := s.cr.SetStatus(ctx, cred.ID, models.CredentialStatusReauthNeeded); serr != nil {
				slog.Info(serr.Error())
			}
		}
		return s.recordFailure(ctx, item, err)
	}

	if err := s.ci.SetPublished(ctx, item.ID, providerPostID); err != nil {
		return err
	}

	history := &models.PublishHistory{
		UserID:         item.UserID,
		ItemID:         item.ID,
		Platform:       item.Platform,
		ProviderPostID: providerPostID,
	}
	if _, err := s.ph.Create(ctx, history); err != nil {
		slog.Info(err.Error())
	}

	return nil
}

func (s *publishService) recordFailure(ctx context.Context, item *models.ContentItem, cause error) error {
	slog.Info(fmt.Sprintf("publish failed for item %d on %s: %v", item.ID, item.Platform, cause))

	if err := s.ci.UpdateStatus(ctx, item.ID, models.ContentStatusFailed); err != nil {
		slog.Info(err.Error())
	}

	history := &models.PublishHistory{
		UserID:       item.UserID,
		ItemID:       item.ID,
		Platform:     item.Platform,
		ErrorMessage: cause.Error(),
	}
	if _, err := s.ph.Create(ctx, history); err != nil {
		slog.Info(err.Error())
	}

	return cause
}

func (s *publishService) History(ctx context.Context, userID int64) ([]*models.PublishHistory, error) {
	return s.ph.ListByUserID(ctx, userID)
}
