package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

// PositionRepository provides data access methods for the position table,
// the broker-reported holdings store.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetPositions retrieves all positions for an account ordered by symbol.
func (r *PositionRepository) GetPositions(accountID string) ([]model.Position, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, symbol, quantity, average_cost, updated_at
		FROM position
		WHERE account_id = ?
		ORDER BY symbol ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		var p model.Position
		var quantityStr, avgCostStr string
		var updatedAtStr sql.NullString

		err := rows.Scan(&p.ID, &p.AccountID, &p.Symbol, &quantityStr, &avgCostStr, &updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}

		if p.Quantity, err = ParseDecimal(quantityStr); err != nil {
			return nil, err
		}
		if p.AverageCost, err = ParseDecimal(avgCostStr); err != nil {
			return nil, err
		}
		if updatedAtStr.Valid {
			if p.UpdatedAt, err = ParseTime(updatedAtStr.String); err != nil {
				return nil, err
			}
		}

		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetHoldingQuantity returns the broker-reported quantity for (account,
// symbol), or zero if no position row exists. The lot regeneration
// reconciliation check is the read-only consumer of this method.
func (r *PositionRepository) GetHoldingQuantity(accountID, symbol string) (decimal.Decimal, error) {
	var quantityStr string
	err := r.db.QueryRow(`
		SELECT quantity FROM position WHERE account_id = ? AND symbol = ?
	`, accountID, symbol).Scan(&quantityStr)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query position table: %w", err)
	}

	return ParseDecimal(quantityStr)
}

// UpsertPosition inserts or replaces the position row for (account, symbol).
func (r *PositionRepository) UpsertPosition(ctx context.Context, p *model.Position) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO position (id, account_id, symbol, quantity, average_cost, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			average_cost = excluded.average_cost,
			updated_at = CURRENT_TIMESTAMP
	`, p.ID, p.AccountID, p.Symbol, p.Quantity.String(), p.AverageCost.String())
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}
	return nil
}
