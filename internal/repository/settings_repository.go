package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentwell/contentwell/internal/models"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, settings *models.Settings, userID int64) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	var s models.Settings
	query := `SELECT id, user_id, brand_voice, default_tone, default_cta, created_at, updated_at
			FROM settings WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.ID, &s.UserID,
		&s.BrandVoice, &s.DefaultTone, &s.DefaultCTA, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &s, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *models.Settings, userID int64) error {
	query := `
		INSERT INTO settings (user_id, brand_voice, default_tone, default_cta)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			brand_voice = EXCLUDED.brand_voice,
			default_tone = EXCLUDED.default_tone,
			default_cta = EXCLUDED.default_cta,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, userID, settings.BrandVoice, settings.DefaultTone, settings.DefaultCTA)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
