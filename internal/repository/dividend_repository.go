package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

// DividendRepository provides data access methods for the dividend table.
type DividendRepository struct {
	db *sql.DB
}

// NewDividendRepository creates a new DividendRepository with the provided database connection.
func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

// GetDividendsForAccount retrieves all dividends for an account ordered by
// pay date descending (most recent first).
func (r *DividendRepository) GetDividendsForAccount(accountID string) ([]model.Dividend, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, symbol, pay_date, amount, currency, created_at
		FROM dividend
		WHERE account_id = ?
		ORDER BY pay_date DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend table: %w", err)
	}
	defer rows.Close()

	dividends := []model.Dividend{}
	for rows.Next() {
		var d model.Dividend
		var payDateStr, amountStr string
		var createdAtStr sql.NullString

		err := rows.Scan(&d.ID, &d.AccountID, &d.Symbol, &payDateStr, &amountStr, &d.Currency, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend table results: %w", err)
		}

		if d.PayDate, err = ParseTime(payDateStr); err != nil {
			return nil, err
		}
		if d.Amount, err = ParseDecimal(amountStr); err != nil {
			return nil, err
		}
		if createdAtStr.Valid {
			if d.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, err
			}
		}

		dividends = append(dividends, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend table: %w", err)
	}

	return dividends, nil
}

// InsertDividend inserts a new dividend row.
func (r *DividendRepository) InsertDividend(ctx context.Context, d *model.Dividend) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dividend (id, account_id, symbol, pay_date, amount, currency)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.AccountID, d.Symbol, d.PayDate.UTC().Format(time.RFC3339), d.Amount.String(), d.Currency)
	if err != nil {
		return fmt.Errorf("failed to insert dividend: %w", err)
	}
	return nil
}

// DividendExists reports whether a dividend with the given ID already
// exists; sync re-imports rely on this for idempotency.
func (r *DividendRepository) DividendExists(id string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM dividend WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query dividend table: %w", err)
	}
	return count > 0, nil
}
