package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
)

// IbkrRepository provides data access methods for the ibkr_config table.
// The flex token column holds the fernet ciphertext produced by the sync
// service; this layer treats it as opaque.
type IbkrRepository struct {
	db *sql.DB
}

// NewIbkrRepository creates a new IbkrRepository with the provided database connection.
func NewIbkrRepository(db *sql.DB) *IbkrRepository {
	return &IbkrRepository{db: db}
}

// IbkrConfigRow is the raw ibkr_config row.
type IbkrConfigRow struct {
	ID              string
	EncryptedToken  string
	FlexQueryID     int
	TokenExpiresAt  *time.Time
	LastImportDate  *time.Time
	AutoSyncEnabled bool
}

// GetConfig retrieves the IBKR configuration row.
// Returns apperrors.ErrIbkrConfigNotFound if no configuration exists.
func (r *IbkrRepository) GetConfig() (IbkrConfigRow, error) {
	var row IbkrConfigRow
	var expiresStr, lastImportStr sql.NullString

	err := r.db.QueryRow(`
		SELECT id, flex_token, flex_query_id, token_expires_at, last_import_date, auto_sync_enabled
		FROM ibkr_config
		LIMIT 1
	`).Scan(&row.ID, &row.EncryptedToken, &row.FlexQueryID, &expiresStr, &lastImportStr, &row.AutoSyncEnabled)
	if err == sql.ErrNoRows {
		return IbkrConfigRow{}, apperrors.ErrIbkrConfigNotFound
	}
	if err != nil {
		return IbkrConfigRow{}, fmt.Errorf("failed to scan ibkr_config table results: %w", err)
	}

	if expiresStr.Valid {
		t, err := ParseTime(expiresStr.String)
		if err != nil {
			return IbkrConfigRow{}, err
		}
		row.TokenExpiresAt = &t
	}
	if lastImportStr.Valid {
		t, err := ParseTime(lastImportStr.String)
		if err != nil {
			return IbkrConfigRow{}, err
		}
		row.LastImportDate = &t
	}

	return row, nil
}

// SaveConfig inserts or replaces the single IBKR configuration row.
func (r *IbkrRepository) SaveConfig(ctx context.Context, row IbkrConfigRow) error {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	var expires, lastImport any
	if row.TokenExpiresAt != nil {
		expires = row.TokenExpiresAt.UTC().Format(time.RFC3339)
	}
	if row.LastImportDate != nil {
		lastImport = row.LastImportDate.UTC().Format(time.RFC3339)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ibkr_config (id, flex_token, flex_query_id, token_expires_at,
			last_import_date, auto_sync_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			flex_token = excluded.flex_token,
			flex_query_id = excluded.flex_query_id,
			token_expires_at = excluded.token_expires_at,
			last_import_date = excluded.last_import_date,
			auto_sync_enabled = excluded.auto_sync_enabled,
			updated_at = CURRENT_TIMESTAMP
	`, row.ID, row.EncryptedToken, row.FlexQueryID, expires, lastImport, row.AutoSyncEnabled)
	if err != nil {
		return fmt.Errorf("failed to save ibkr config: %w", err)
	}

	return nil
}

// UpdateLastImportDate stamps the configuration with the completion time
// of the latest successful import.
func (r *IbkrRepository) UpdateLastImportDate(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE ibkr_config
		SET last_import_date = ?, updated_at = CURRENT_TIMESTAMP
	`, at.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to update ibkr config: %w", err)
	}
	return nil
}
