package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/contentwell/contentwell/internal/models"
)

type LeadRepository interface {
	CreateBatch(ctx context.Context, leads []*models.Lead) (int, error)
	ListByBatchID(ctx context.Context, userID int64, batchID string) ([]*models.Lead, error)
	ListBatchIDs(ctx context.Context, userID int64) ([]string, error)
	RemoveBatch(ctx context.Context, userID int64, batchID string) error
}

type leadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) LeadRepository {
	return &leadRepository{db: db}
}

// CreateBatch inserts all leads of one import in a single transaction.
// Duplicate emails within the batch are skipped by the unique constraint.
func (r *leadRepository) CreateBatch(ctx context.Context, leads []*models.Lead) (int, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO leads (user_id, batch_id, first_name, last_name, email, company, title, phone, website, linkedin_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, batch_id, email) DO NOTHING
	`

	inserted := 0
	for _, lead := range leads {
		result, err := tx.ExecContext(ctx, query,
			lead.UserID, lead.BatchID, lead.FirstName, lead.LastName, lead.Email,
			lead.Company, lead.Title, lead.Phone, lead.Website, lead.LinkedinURL)
		if err != nil {
			slog.Info(err.Error())
			return 0, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			slog.Info(err.Error())
			return 0, err
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return inserted, nil
}

func (r *leadRepository) ListByBatchID(ctx context.Context, userID int64, batchID string) ([]*models.Lead, error) {
	query := `SELECT id, user_id, batch_id, first_name, last_name, email, company, title, phone, website, linkedin_url, created_at
			FROM leads WHERE user_id = $1 AND batch_id = $2 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID, batchID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		var lead models.Lead
		err := rows.Scan(&lead.ID, &lead.UserID, &lead.BatchID, &lead.FirstName,
			&lead.LastName, &lead.Email, &lead.Company, &lead.Title, &lead.Phone,
			&lead.Website, &lead.LinkedinURL, &lead.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		leads = append(leads, &lead)
	}
	return leads, nil
}

func (r *leadRepository) ListBatchIDs(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT DISTINCT batch_id FROM leads WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var batchIDs []string
	for rows.Next() {
		var batchID string
		if err := rows.Scan(&batchID); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		batchIDs = append(batchIDs, batchID)
	}
	return batchIDs, nil
}

func (r *leadRepository) RemoveBatch(ctx context.Context, userID int64, batchID string) error {
	query := `DELETE FROM leads WHERE user_id = $1 AND batch_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, batchID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
