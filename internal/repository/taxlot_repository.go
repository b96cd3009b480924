package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

// TaxLotRepository provides data access methods for the tax_lot and
// tax_lot_sale tables. Methods with a Tx suffix run inside a caller-owned
// transaction; the lot ledger service uses them to keep multi-lot sale
// execution and bulk regeneration atomic.
type TaxLotRepository struct {
	db *sql.DB
}

// NewTaxLotRepository creates a new TaxLotRepository with the provided database connection.
func NewTaxLotRepository(db *sql.DB) *TaxLotRepository {
	return &TaxLotRepository{db: db}
}

// BeginTx starts a transaction for multi-statement lot mutations.
func (r *TaxLotRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const taxLotColumns = `id, account_id, symbol, purchase_date, shares_purchased,
		shares_remaining, cost_per_share, commission, created_at`

// GetOpenLots retrieves all lots for (account, symbol) with shares
// remaining, ordered by purchase date ascending (natural FIFO order).
// Callers re-sort for other selection methods.
func (r *TaxLotRepository) GetOpenLots(accountID, symbol string) ([]model.TaxLot, error) {
	rows, err := r.db.Query(`
		SELECT `+taxLotColumns+`
		FROM tax_lot
		WHERE account_id = ?
		AND symbol = ?
		AND CAST(shares_remaining AS REAL) > 0
		ORDER BY purchase_date ASC, id ASC
	`, accountID, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_lot table: %w", err)
	}
	defer rows.Close()

	return collectLots(rows)
}

// GetOpenLotsForAccount retrieves all open lots across every symbol in an
// account, ordered by symbol then purchase date.
func (r *TaxLotRepository) GetOpenLotsForAccount(accountID string) ([]model.TaxLot, error) {
	rows, err := r.db.Query(`
		SELECT `+taxLotColumns+`
		FROM tax_lot
		WHERE account_id = ?
		AND CAST(shares_remaining AS REAL) > 0
		ORDER BY symbol ASC, purchase_date ASC, id ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_lot table: %w", err)
	}
	defer rows.Close()

	return collectLots(rows)
}

// GetLot retrieves a single tax lot by ID.
// Returns apperrors.ErrTaxLotNotFound if no lot exists with the given ID.
func (r *TaxLotRepository) GetLot(lotID string) (model.TaxLot, error) {
	row := r.db.QueryRow(`SELECT `+taxLotColumns+` FROM tax_lot WHERE id = ?`, lotID)

	lot, err := scanLot(row)
	if err == sql.ErrNoRows {
		return model.TaxLot{}, apperrors.ErrTaxLotNotFound
	}
	if err != nil {
		return model.TaxLot{}, err
	}

	return lot, nil
}

// InsertLot inserts a new tax lot row.
func (r *TaxLotRepository) InsertLot(ctx context.Context, lot *model.TaxLot) error {
	_, err := r.db.ExecContext(ctx, insertLotQuery, insertLotArgs(lot)...)
	if err != nil {
		return fmt.Errorf("failed to insert tax lot: %w", err)
	}
	return nil
}

// InsertLotTx inserts a new tax lot row inside a caller-owned transaction.
func (r *TaxLotRepository) InsertLotTx(tx *sql.Tx, lot *model.TaxLot) error {
	_, err := tx.Exec(insertLotQuery, insertLotArgs(lot)...)
	if err != nil {
		return fmt.Errorf("failed to insert tax lot: %w", err)
	}
	return nil
}

const insertLotQuery = `
	INSERT INTO tax_lot (id, account_id, symbol, purchase_date,
		shares_purchased, shares_remaining, cost_per_share, commission)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func insertLotArgs(lot *model.TaxLot) []any {
	return []any{
		lot.ID,
		lot.AccountID,
		lot.Symbol,
		lot.PurchaseDate.UTC().Format(time.RFC3339),
		lot.SharesPurchased.String(),
		lot.SharesRemaining.String(),
		lot.CostPerShare.String(),
		lot.Commission.String(),
	}
}

// UpdateSharesRemainingTx decrements a lot to a new remaining share count
// inside a caller-owned transaction. The update is conditional on the
// expected current value (compare-and-swap), so a concurrent sale that
// consumed the same lot causes this call to fail rather than over-sell.
func (r *TaxLotRepository) UpdateSharesRemainingTx(tx *sql.Tx, lotID string, newRemaining, expectedRemaining decimal.Decimal) error {
	result, err := tx.Exec(`
		UPDATE tax_lot
		SET shares_remaining = ?
		WHERE id = ?
		AND shares_remaining = ?
	`, newRemaining.String(), lotID, expectedRemaining.String())
	if err != nil {
		return fmt.Errorf("failed to update tax lot shares: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check tax lot update: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("%w: lot %s changed concurrently", apperrors.ErrDataInconsistency, lotID)
	}

	return nil
}

// DeleteLotsForAccountTx deletes every tax lot for an account inside a
// caller-owned transaction. Sale rows cascade with their lots, so a
// regeneration run starts from a clean slate.
func (r *TaxLotRepository) DeleteLotsForAccountTx(tx *sql.Tx, accountID string) error {
	if _, err := tx.Exec(`DELETE FROM tax_lot WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("failed to delete tax lots: %w", err)
	}
	return nil
}

// InsertSaleTx inserts a tax lot sale record inside a caller-owned transaction.
func (r *TaxLotRepository) InsertSaleTx(tx *sql.Tx, sale *model.TaxLotSale) error {
	_, err := tx.Exec(`
		INSERT INTO tax_lot_sale (id, tax_lot_id, account_id, symbol, sale_date,
			shares_sold, sale_price_per_share, commission, cost_basis,
			realized_gain_loss, is_long_term, lot_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sale.ID,
		sale.TaxLotID,
		sale.AccountID,
		sale.Symbol,
		sale.SaleDate.UTC().Format(time.RFC3339),
		sale.SharesSold.String(),
		sale.SalePricePerShare.String(),
		sale.Commission.String(),
		sale.CostBasis.String(),
		sale.RealizedGainLoss.String(),
		sale.IsLongTerm,
		sale.LotMethod,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tax lot sale: %w", err)
	}
	return nil
}

// GetSalesForYear retrieves all sale records for an account with a sale
// date inside the given calendar year, ordered by sale date.
func (r *TaxLotRepository) GetSalesForYear(accountID string, year int) ([]model.TaxLotSale, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	rows, err := r.db.Query(`
		SELECT id, tax_lot_id, account_id, symbol, sale_date, shares_sold,
			sale_price_per_share, commission, cost_basis, realized_gain_loss,
			is_long_term, lot_method, created_at
		FROM tax_lot_sale
		WHERE account_id = ?
		AND sale_date >= ?
		AND sale_date < ?
		ORDER BY sale_date ASC, id ASC
	`, accountID, start.Format(time.RFC3339), end.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query tax_lot_sale table: %w", err)
	}
	defer rows.Close()

	sales := []model.TaxLotSale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_lot_sale table: %w", err)
	}

	return sales, nil
}

func collectLots(rows *sql.Rows) ([]model.TaxLot, error) {
	lots := []model.TaxLot{}
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tax_lot table: %w", err)
	}

	return lots, nil
}

func scanLot(row rowScanner) (model.TaxLot, error) {
	var lot model.TaxLot
	var purchaseDateStr string
	var sharesPurchasedStr, sharesRemainingStr, costPerShareStr, commissionStr string
	var createdAtStr sql.NullString

	err := row.Scan(
		&lot.ID,
		&lot.AccountID,
		&lot.Symbol,
		&purchaseDateStr,
		&sharesPurchasedStr,
		&sharesRemainingStr,
		&costPerShareStr,
		&commissionStr,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.TaxLot{}, err
	}
	if err != nil {
		return model.TaxLot{}, fmt.Errorf("failed to scan tax_lot table results: %w", err)
	}

	if lot.PurchaseDate, err = ParseTime(purchaseDateStr); err != nil {
		return model.TaxLot{}, err
	}
	if lot.SharesPurchased, err = ParseDecimal(sharesPurchasedStr); err != nil {
		return model.TaxLot{}, err
	}
	if lot.SharesRemaining, err = ParseDecimal(sharesRemainingStr); err != nil {
		return model.TaxLot{}, err
	}
	if lot.CostPerShare, err = ParseDecimal(costPerShareStr); err != nil {
		return model.TaxLot{}, err
	}
	if lot.Commission, err = ParseDecimal(commissionStr); err != nil {
		return model.TaxLot{}, err
	}
	if createdAtStr.Valid {
		if lot.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
			return model.TaxLot{}, err
		}
	}

	return lot, nil
}

func scanSale(row rowScanner) (model.TaxLotSale, error) {
	var sale model.TaxLotSale
	var saleDateStr string
	var sharesSoldStr, salePriceStr, commissionStr, costBasisStr, gainLossStr string
	var createdAtStr sql.NullString

	err := row.Scan(
		&sale.ID,
		&sale.TaxLotID,
		&sale.AccountID,
		&sale.Symbol,
		&saleDateStr,
		&sharesSoldStr,
		&salePriceStr,
		&commissionStr,
		&costBasisStr,
		&gainLossStr,
		&sale.IsLongTerm,
		&sale.LotMethod,
		&createdAtStr,
	)
	if err != nil {
		return model.TaxLotSale{}, fmt.Errorf("failed to scan tax_lot_sale table results: %w", err)
	}

	if sale.SaleDate, err = ParseTime(saleDateStr); err != nil {
		return model.TaxLotSale{}, err
	}
	if sale.SharesSold, err = ParseDecimal(sharesSoldStr); err != nil {
		return model.TaxLotSale{}, err
	}
	if sale.SalePricePerShare, err = ParseDecimal(salePriceStr); err != nil {
		return model.TaxLotSale{}, err
	}
	if sale.Commission, err = ParseDecimal(commissionStr); err != nil {
		return model.TaxLotSale{}, err
	}
	if sale.CostBasis, err = ParseDecimal(costBasisStr); err != nil {
		return model.TaxLotSale{}, err
	}
	if sale.RealizedGainLoss, err = ParseDecimal(gainLossStr); err != nil {
		return model.TaxLotSale{}, err
	}
	if createdAtStr.Valid {
		if sale.CreatedAt, err = ParseTime(createdAtStr.String); err != nil {
			return model.TaxLotSale{}, err
		}
	}

	return sale, nil
}
