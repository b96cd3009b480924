package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	// Simple creation with defaults
//	account := testutil.NewAccount().Build(t, db)
//
//	// Customized account
//	account := testutil.NewAccount().
//	    WithName("Taxable Brokerage").
//	    WithBroker("ibkr").
//	    Build(t, db)
type AccountBuilder struct {
	ID            string
	AccountNumber string
	Broker        string
	Name          string
	Currency      string
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:            MakeID(),
		AccountNumber: MakeAccountNumber(),
		Broker:        "manual",
		Name:          "Test Account " + randomAlphanumeric(6),
		Currency:      "USD",
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *AccountBuilder) WithName(name string) *AccountBuilder {
	b.Name = name
	return b
}

// WithBroker sets a custom broker.
func (b *AccountBuilder) WithBroker(broker string) *AccountBuilder {
	b.Broker = broker
	return b
}

// WithAccountNumber sets a custom account number.
func (b *AccountBuilder) WithAccountNumber(number string) *AccountBuilder {
	b.AccountNumber = number
	return b
}

// Build creates the account in the database and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	query := `
		INSERT INTO account (id, account_number, broker, name, currency)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AccountNumber, b.Broker, b.Name, b.Currency)
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{
		ID:            b.ID,
		AccountNumber: b.AccountNumber,
		Broker:        b.Broker,
		Name:          b.Name,
		Currency:      b.Currency,
	}
}

// CreateAccount creates an account with default values.
//
// Example usage:
//
//	account := testutil.CreateAccount(t, db)
func CreateAccount(t *testing.T, db *sql.DB) model.Account {
	t.Helper()
	return NewAccount().Build(t, db)
}

// TaxLotBuilder provides a fluent interface for creating test tax lots.
//
// Example usage:
//
//	lot := testutil.NewTaxLot(account.ID).
//	    WithSymbol("AAPL").
//	    WithShares("100").
//	    WithCostPerShare("10").
//	    WithPurchaseDate(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).
//	    Build(t, db)
type TaxLotBuilder struct {
	ID              string
	AccountID       string
	Symbol          string
	PurchaseDate    time.Time
	SharesPurchased decimal.Decimal
	SharesRemaining decimal.Decimal
	CostPerShare    decimal.Decimal
	Commission      decimal.Decimal
}

// NewTaxLot creates a TaxLotBuilder with sensible defaults: 100 shares
// purchased and remaining at $10 each.
func NewTaxLot(accountID string) *TaxLotBuilder {
	return &TaxLotBuilder{
		ID:              MakeID(),
		AccountID:       accountID,
		Symbol:          "TEST",
		PurchaseDate:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		SharesPurchased: decimal.NewFromInt(100),
		SharesRemaining: decimal.NewFromInt(100),
		CostPerShare:    decimal.NewFromInt(10),
		Commission:      decimal.Zero,
	}
}

// WithID sets a custom ID.
func (b *TaxLotBuilder) WithID(id string) *TaxLotBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom symbol.
func (b *TaxLotBuilder) WithSymbol(symbol string) *TaxLotBuilder {
	b.Symbol = symbol
	return b
}

// WithPurchaseDate sets a custom purchase date.
func (b *TaxLotBuilder) WithPurchaseDate(date time.Time) *TaxLotBuilder {
	b.PurchaseDate = date
	return b
}

// WithShares sets both shares purchased and shares remaining.
func (b *TaxLotBuilder) WithShares(shares string) *TaxLotBuilder {
	b.SharesPurchased = decimal.RequireFromString(shares)
	b.SharesRemaining = b.SharesPurchased
	return b
}

// WithSharesRemaining sets shares remaining independently, for partially
// consumed lots.
func (b *TaxLotBuilder) WithSharesRemaining(shares string) *TaxLotBuilder {
	b.SharesRemaining = decimal.RequireFromString(shares)
	return b
}

// WithCostPerShare sets a custom cost per share.
func (b *TaxLotBuilder) WithCostPerShare(cost string) *TaxLotBuilder {
	b.CostPerShare = decimal.RequireFromString(cost)
	return b
}

// WithCommission sets a custom commission.
func (b *TaxLotBuilder) WithCommission(commission string) *TaxLotBuilder {
	b.Commission = decimal.RequireFromString(commission)
	return b
}

// Build creates the tax lot in the database and returns it.
func (b *TaxLotBuilder) Build(t *testing.T, db *sql.DB) model.TaxLot {
	t.Helper()

	query := `
		INSERT INTO tax_lot (id, account_id, symbol, purchase_date, shares_purchased, shares_remaining, cost_per_share, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID,
		b.AccountID,
		b.Symbol,
		b.PurchaseDate.UTC().Format(time.RFC3339),
		b.SharesPurchased.String(),
		b.SharesRemaining.String(),
		b.CostPerShare.String(),
		b.Commission.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test tax lot: %v", err)
	}

	return model.TaxLot{
		ID:              b.ID,
		AccountID:       b.AccountID,
		Symbol:          b.Symbol,
		PurchaseDate:    b.PurchaseDate.UTC(),
		SharesPurchased: b.SharesPurchased,
		SharesRemaining: b.SharesRemaining,
		CostPerShare:    b.CostPerShare,
		Commission:      b.Commission,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// transaction rows directly, bypassing the ledger. Used by regeneration
// tests that replay raw history.
type TransactionBuilder struct {
	ID            string
	AccountID     string
	Symbol        string
	Date          time.Time
	Type          string
	Shares        decimal.Decimal
	PricePerShare decimal.Decimal
	Commission    decimal.Decimal
}

// NewTransaction creates a TransactionBuilder defaulting to a buy of 100
// shares at $10.
func NewTransaction(accountID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		AccountID:     accountID,
		Symbol:        "TEST",
		Date:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:          model.TransactionTypeBuy,
		Shares:        decimal.NewFromInt(100),
		PricePerShare: decimal.NewFromInt(10),
		Commission:    decimal.Zero,
	}
}

// WithSymbol sets a custom symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithDate sets a custom date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithType sets a custom transaction type.
func (b *TransactionBuilder) WithType(transactionType string) *TransactionBuilder {
	b.Type = transactionType
	return b
}

// Sell marks the transaction as a sell.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionTypeSell
	return b
}

// WithShares sets a custom share quantity.
func (b *TransactionBuilder) WithShares(shares string) *TransactionBuilder {
	b.Shares = decimal.RequireFromString(shares)
	return b
}

// WithPricePerShare sets a custom price per share.
func (b *TransactionBuilder) WithPricePerShare(price string) *TransactionBuilder {
	b.PricePerShare = decimal.RequireFromString(price)
	return b
}

// WithCommission sets a custom commission.
func (b *TransactionBuilder) WithCommission(commission string) *TransactionBuilder {
	b.Commission = decimal.RequireFromString(commission)
	return b
}

// Build creates the transaction row in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, account_id, symbol, date, type, shares, price_per_share, commission)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID,
		b.AccountID,
		b.Symbol,
		b.Date.UTC().Format(time.RFC3339),
		b.Type,
		b.Shares.String(),
		b.PricePerShare.String(),
		b.Commission.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:            b.ID,
		AccountID:     b.AccountID,
		Symbol:        b.Symbol,
		Date:          b.Date.UTC(),
		Type:          b.Type,
		Shares:        b.Shares,
		PricePerShare: b.PricePerShare,
		Commission:    b.Commission,
	}
}

// CreatePosition inserts a broker-reported holding for reconciliation tests.
func CreatePosition(t *testing.T, db *sql.DB, accountID, symbol, quantity string) model.Position {
	t.Helper()

	position := model.Position{
		ID:        MakeID(),
		AccountID: accountID,
		Symbol:    symbol,
		Quantity:  decimal.RequireFromString(quantity),
	}

	query := `
		INSERT INTO position (id, account_id, symbol, quantity, average_cost)
		VALUES (?, ?, ?, ?, '0')
	`

	if _, err := db.Exec(query, position.ID, position.AccountID, position.Symbol, position.Quantity.String()); err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return position
}

// CreateDividend inserts a dividend payment.
func CreateDividend(t *testing.T, db *sql.DB, accountID, symbol, amount string, payDate time.Time) model.Dividend {
	t.Helper()

	dividend := model.Dividend{
		ID:        MakeID(),
		AccountID: accountID,
		Symbol:    symbol,
		PayDate:   payDate.UTC(),
		Amount:    decimal.RequireFromString(amount),
		Currency:  "USD",
	}

	query := `
		INSERT INTO dividend (id, account_id, symbol, pay_date, amount, currency)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		dividend.ID,
		dividend.AccountID,
		dividend.Symbol,
		dividend.PayDate.Format(time.RFC3339),
		dividend.Amount.String(),
		dividend.Currency,
	)
	if err != nil {
		t.Fatalf("Failed to create test dividend: %v", err)
	}

	return dividend
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeAccountNumber generates a realistic broker account number for testing.
//
// Example usage:
//
//	number := testutil.MakeAccountNumber()
//	// Returns: "U1A2B3C4"
func MakeAccountNumber() string {
	return "U" + randomAlphanumeric(7)
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
