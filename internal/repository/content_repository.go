package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentwell/contentwell/internal/models"
)

type ContentItemRepository interface {
	Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ContentItem, error)
	ListByCampaignID(ctx context.Context, campaignID int64) ([]*models.ContentItem, error)
	CheckByUserID(ctx context.Context, itemID, userID int64) (bool, error)
	UpdateText(ctx context.Context, id int64, text string) error
	UpdateImage(ctx context.Context, id int64, imagePrompt, imageURL string) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	SetPublished(ctx context.Context, id int64, providerPostID string) error
	Remove(ctx context.Context, id int64) error
}

type contentItemRepository struct {
	db *sql.DB
}

func NewContentItemRepository(db *sql.DB) ContentItemRepository {
	return &contentItemRepository{db: db}
}

func (r *contentItemRepository) Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) (int64, error) {
	query := `
		INSERT INTO content_items (campaign_id, user_id, content_type, subtype, platform, generated_text, image_prompt, image_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		item.CampaignID, item.UserID, item.ContentType, item.Subtype, item.Platform,
		item.GeneratedText, item.ImagePrompt, item.ImageURL, item.Status,
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

func (r *contentItemRepository) GetByID(ctx context.Context, id int64) (*models.ContentItem, error) {
	query := `SELECT id, campaign_id, user_id, content_type, subtype, platform, generated_text,
			image_prompt, image_url, status, published_post_id, created_at, updated_at
			FROM content_items WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var item models.ContentItem
	err := row.Scan(&item.ID, &item.CampaignID, &item.UserID, &item.ContentType,
		&item.Subtype, &item.Platform, &item.GeneratedText, &item.ImagePrompt,
		&item.ImageURL, &item.Status, &item.PublishedPostID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &item, nil
}

func (r *contentItemRepository) ListByCampaignID(ctx context.Context, campaignID int64) ([]*models.ContentItem, error) {
	query := `SELECT id, campaign_id, user_id, content_type, subtype, platform, generated_text,
			image_prompt, image_url, status, published_post_id, created_at, updated_at
			FROM content_items WHERE campaign_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		var item models.ContentItem
		err := rows.Scan(&item.ID, &item.CampaignID, &item.UserID, &item.ContentType,
			&item.Subtype, &item.Platform, &item.GeneratedText, &item.ImagePrompt,
			&item.ImageURL, &item.Status, &item.PublishedPostID, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

func (r *contentItemRepository) CheckByUserID(ctx context.Context, itemID, userID int64) (bool, error) {
	query := "SELECT 1 FROM content_items WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, itemID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *contentItemRepository) UpdateText(ctx context.Context, id int64, text string) error {
	query := `UPDATE content_items SET generated_text = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, text)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) UpdateImage(ctx context.Context, id int64, imagePrompt, imageURL string) error {
	query := `UPDATE content_items SET image_prompt = $2, image_url = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, imagePrompt, imageURL)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE content_items SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) SetPublished(ctx context.Context, id int64, providerPostID string) error {
	query := `UPDATE content_items SET status = $2, published_post_id = $3, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, models.ContentStatusPublished, providerPostID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *contentItemRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM content_items WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
