package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentwell/contentwell/internal/models"
)

type CampaignRepository interface {
	Create(ctx context.Context, tx *sql.Tx, campaign *models.Campaign) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.Campaign, error)
	CheckByUserID(ctx context.Context, campaignID, userID int64) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status, errorMessage string) error
	Remove(ctx context.Context, id int64) error
}

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, tx *sql.Tx, campaign *models.Campaign) (int64, error) {
	query := `
		INSERT INTO campaigns (user_id, name, product_name, description, target_audience, tone, content_types, platforms, workflow, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		campaign.UserID, campaign.Name, campaign.ProductName, campaign.Description,
		campaign.TargetAudience, campaign.Tone, campaign.ContentTypes,
		campaign.Platforms, campaign.Workflow, campaign.Status,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	query := `SELECT id, user_id, name, product_name, description, target_audience, tone,
			content_types, platforms, workflow, status, error_message, created_at, updated_at
			FROM campaigns WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var c models.Campaign
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.ProductName, &c.Description,
		&c.TargetAudience, &c.Tone, &c.ContentTypes, &c.Platforms, &c.Workflow,
		&c.Status, &c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &c, nil
}

func (r *campaignRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.Campaign, error) {
	query := `SELECT id, user_id, name, product_name, description, target_audience, tone,
			content_types, platforms, workflow, status, error_message, created_at, updated_at
			FROM campaigns WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.ProductName, &c.Description,
			&c.TargetAudience, &c.Tone, &c.ContentTypes, &c.Platforms, &c.Workflow,
			&c.Status, &c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, nil
}

func (r *campaignRepository) CheckByUserID(ctx context.Context, campaignID, userID int64) (bool, error) {
	query := "SELECT 1 FROM campaigns WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, campaignID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, id int64, status, errorMessage string) error {
	query := `UPDATE campaigns SET status = $2, error_message = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status, errorMessage)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *campaignRepository) Remove(ctx context.Context, id int64) error {
	// content_items cascade on campaign delete
	query := `DELETE FROM campaigns WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
