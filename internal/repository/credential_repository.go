package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/contentwell/contentwell/internal/models"
)

type CredentialRepository interface {
	Upsert(ctx context.Context, tx *sql.Tx, cred *models.Credential) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Credential, bool, error)
	GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.Credential, bool, error)
	ListInfoByUserID(ctx context.Context, userID int64) ([]*models.Credential, error)
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.Credential, error)
	CheckByUserID(ctx context.Context, credentialID, userID int64) (bool, error)
	UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	SetStatus(ctx context.Context, id int64, status string) error
	Remove(ctx context.Context, id int64) error
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// Upsert keeps at most one row per (user_id, platform); reconnecting a
// platform overwrites the previous token in place.
func (r *credentialRepository) Upsert(ctx context.Context, tx *sql.Tx, cred *models.Credential) (int64, error) {
	var err error
	var id int64

	var upsertQuery = `
			INSERT INTO credentials(
				user_id,
				platform,
				account_id,
				account_name,
				account_username,
				profile_picture_url,
				access_token,
				refresh_token,
				token_type,
				scopes,
				token_expires_at,
				metadata,
				status
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (user_id, platform) DO UPDATE SET
				account_id = EXCLUDED.account_id,
				account_name = EXCLUDED.account_name,
				account_username = EXCLUDED.account_username,
				profile_picture_url = EXCLUDED.profile_picture_url,
				access_token = EXCLUDED.access_token,
				refresh_token = EXCLUDED.refresh_token,
				token_type = EXCLUDED.token_type,
				scopes = EXCLUDED.scopes,
				token_expires_at = EXCLUDED.token_expires_at,
				metadata = EXCLUDED.metadata,
				status = EXCLUDED.status,
				updated_at = CURRENT_TIMESTAMP
			RETURNING id
		`

	status := cred.Status
	if status == "" {
		status = models.CredentialStatusActive
	}

	args := []interface{}{
		cred.UserID,
		cred.Platform,
		cred.AccountID,
		cred.AccountName,
		cred.AccountUsername,
		cred.ProfilePicture,
		cred.AccessToken,
		cred.RefreshToken,
		cred.TokenType,
		cred.Scopes,
		cred.TokenExpiresAt,
		cred.Metadata,
		status,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, upsertQuery, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, upsertQuery, args...).Scan(&id)
	}

	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *credentialRepository) GetByID(ctx context.Context, id int64) (*models.Credential, bool, error) {
	query := `SELECT id, user_id, platform, account_id, account_name, account_username,
			profile_picture_url, access_token, refresh_token, token_type, scopes,
			token_expires_at, metadata, status, created_at, updated_at
			FROM credentials WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var c models.Credential
	err := row.Scan(&c.ID, &c.UserID, &c.Platform, &c.AccountID, &c.AccountName,
		&c.AccountUsername, &c.ProfilePicture, &c.AccessToken, &c.RefreshToken,
		&c.TokenType, &c.Scopes, &c.TokenExpiresAt, &c.Metadata, &c.Status,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &c, true, nil
}

func (r *credentialRepository) GetByUserAndPlatform(ctx context.Context, userID int64, platform string) (*models.Credential, bool, error) {
	query := `SELECT id, user_id, platform, account_id, account_name, account_username,
			profile_picture_url, access_token, refresh_token, token_type, scopes,
			token_expires_at, metadata, status, created_at, updated_at
			FROM credentials WHERE user_id = $1 AND platform = $2`
	row := r.db.QueryRowContext(ctx, query, userID, platform)

	var c models.Credential
	err := row.Scan(&c.ID, &c.UserID, &c.Platform, &c.AccountID, &c.AccountName,
		&c.AccountUsername, &c.ProfilePicture, &c.AccessToken, &c.RefreshToken,
		&c.TokenType, &c.Scopes, &c.TokenExpiresAt, &c.Metadata, &c.Status,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &c, true, nil
}

func (r *credentialRepository) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.Credential, error) {
	query := `SELECT id, platform, account_id, account_name, account_username,
			profile_picture_url, token_expires_at, status
			FROM credentials WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var credentials []*models.Credential
	for rows.Next() {
		var c models.Credential
		err := rows.Scan(&c.ID, &c.Platform, &c.AccountID, &c.AccountName,
			&c.AccountUsername, &c.ProfilePicture, &c.TokenExpiresAt, &c.Status)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		credentials = append(credentials, &c)
	}
	return credentials, nil
}

func (r *credentialRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.Credential, error) {
	query := `SELECT id, user_id, platform, access_token, refresh_token, token_expires_at, status
			FROM credentials
			WHERE token_expires_at < $1 AND status = $2`
	rows, err := r.db.QueryContext(ctx, query, deadline, models.CredentialStatusActive)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var credentials []*models.Credential
	for rows.Next() {
		var c models.Credential
		err := rows.Scan(&c.ID, &c.UserID, &c.Platform, &c.AccessToken, &c.RefreshToken, &c.TokenExpiresAt, &c.Status)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		credentials = append(credentials, &c)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return credentials, nil
}

func (r *credentialRepository) CheckByUserID(ctx context.Context, credentialID, userID int64) (bool, error) {
	query := "SELECT 1 FROM credentials WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, credentialID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *credentialRepository) UpdateToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE credentials
		SET
			access_token = COALESCE(NULLIF($2, ''), access_token),
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expires_at = COALESCE($4, token_expires_at),
			status = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt, models.CredentialStatusActive)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("no rows affected; credential may not exist")
		return sql.ErrNoRows
	}

	return nil
}

func (r *credentialRepository) SetStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE credentials SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *credentialRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM credentials WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
