package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, account_id, symbol, date, type, shares,
		price_per_share, commission, created_at`

// GetTransactionsForAccount retrieves all transactions for an account
// ordered by date ascending.
func (r *TransactionRepository) GetTransactionsForAccount(accountID string) ([]model.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT `+transactionColumns+`
		FROM "transaction"
		WHERE account_id = ?
		ORDER BY date ASC, created_at ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetTradeHistory retrieves the full ordered buy/sell history for an
// account, for the lot regeneration bootstrap. Records are ordered by
// date ascending with buys before sells on the same date, so replay
// always has lots available before a same-day sell consumes them.
func (r *TransactionRepository) GetTradeHistory(accountID string) ([]model.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT `+transactionColumns+`
		FROM "transaction"
		WHERE account_id = ?
		AND type IN (?, ?)
		ORDER BY date ASC,
			CASE type WHEN ? THEN 0 ELSE 1 END ASC,
			created_at ASC
	`, accountID, model.TransactionTypeBuy, model.TransactionTypeSell, model.TransactionTypeBuy)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// InsertTransaction inserts a new transaction row.
func (r *TransactionRepository) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO "transaction" (id, account_id, symbol, date, type, shares,
			price_per_share, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.AccountID,
		t.Symbol,
		t.Date.UTC().Format(time.RFC3339),
		t.Type,
		t.Shares.String(),
		t.PricePerShare.String(),
		t.Commission.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// TransactionExists reports whether a transaction with the given ID is
// already present. The IBKR sync layer uses flex transaction IDs as row
// IDs so re-imports are idempotent.
func (r *TransactionRepository) TransactionExists(id string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM "transaction" WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query transaction table: %w", err)
	}
	return count > 0, nil
}

func collectTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var dateStr string
		var sharesStr, priceStr, commissionStr string
		var createdAtStr sql.NullString

		err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.Symbol,
			&dateStr,
			&t.Type,
			&sharesStr,
			&priceStr,
			&commissionStr,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}

		if t.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if t.Shares, err = ParseDecimal(sharesStr); err != nil {
			return nil, err
		}
		if t.PricePerShare, err = ParseDecimal(priceStr); err != nil {
			return nil, err
		}
		if t.Commission, err = ParseDecimal(commissionStr); err != nil {
			return nil, err
		}
		if createdAtStr.Valid {
			if t.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
				return nil, err
			}
		}

		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}
