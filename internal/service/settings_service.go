package service

import (
	"context"

	"github.com/contentwell/contentwell/internal/models"
	"github.com/contentwell/contentwell/internal/repository"
)

type SettingsService interface {
	GetSettingsInfo(ctx context.Context, id int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, brandVoice, defaultTone, defaultCTA string) error
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		sr: sr,
	}
}

// GetSettingsInfo returns empty defaults for users who never saved settings.
func (s *settingsService) GetSettingsInfo(ctx context.Context, id int64) (*models.Settings, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isExist {
		return &models.Settings{UserID: id}, nil
	}

	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, brandVoice, defaultTone, defaultCTA string) error {
	settings := models.Settings{
		BrandVoice:  brandVoice,
		DefaultTone: defaultTone,
		DefaultCTA:  defaultCTA,
	}
	err := s.sr.Upsert(ctx, &settings, userID)
	if err != nil {
		return err
	}
	return nil
}
