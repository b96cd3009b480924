package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/ibkr"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
	"github.com/sankalp404/quantmatrix-sub000/internal/service"
)

// Flat tax rates used across service tests.
var (
	TestShortTermRate = decimal.RequireFromString("0.35")
	TestLongTermRate  = decimal.RequireFromString("0.15")
)

// StaticPriceOracle is a price oracle backed by a fixed symbol-to-price
// map. Symbols absent from the map report no price available, and Err is
// returned for every lookup when set.
type StaticPriceOracle struct {
	Prices map[string]decimal.Decimal
	Err    error
}

// NewStaticPriceOracle builds an oracle from symbol/price string pairs.
//
// Example usage:
//
//	oracle := testutil.NewStaticPriceOracle(map[string]string{"AAPL": "30"})
func NewStaticPriceOracle(prices map[string]string) *StaticPriceOracle {
	parsed := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		parsed[symbol] = decimal.RequireFromString(price)
	}
	return &StaticPriceOracle{Prices: parsed}
}

// GetCurrentPrice implements marketdata.PriceOracle.
func (o *StaticPriceOracle) GetCurrentPrice(_ context.Context, symbol string) (decimal.Decimal, bool, error) {
	if o.Err != nil {
		return decimal.Zero, false, o.Err
	}
	price, ok := o.Prices[symbol]
	if !ok {
		return decimal.Zero, false, nil
	}
	return price, true, nil
}

// NewTestTaxLotService wires a TaxLotService against the test database
// with the given price oracle and the standard test tax rates.
func NewTestTaxLotService(t *testing.T, db *sql.DB, oracle *StaticPriceOracle) *service.TaxLotService {
	t.Helper()

	return service.NewTaxLotService(
		repository.NewTaxLotRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewPositionRepository(db),
		repository.NewAccountRepository(db),
		oracle,
		TestShortTermRate,
		TestLongTermRate,
	)
}

// NewTestTransactionService wires a TransactionService over a fresh
// TaxLotService with the given oracle.
func NewTestTransactionService(t *testing.T, db *sql.DB, oracle *StaticPriceOracle) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		repository.NewTransactionRepository(db),
		repository.NewAccountRepository(db),
		NewTestTaxLotService(t, db, oracle),
	)
}

// NewTestDividendService wires a DividendService against the test database.
func NewTestDividendService(t *testing.T, db *sql.DB) *service.DividendService {
	t.Helper()

	return service.NewDividendService(repository.NewDividendRepository(db))
}

// NewTestPortfolioService wires a PortfolioService with the given oracle.
func NewTestPortfolioService(t *testing.T, db *sql.DB, oracle *StaticPriceOracle) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		repository.NewAccountRepository(db),
		repository.NewPositionRepository(db),
		repository.NewTaxLotRepository(db),
		NewTestDividendService(t, db),
		oracle,
	)
}

// NewTestSystemService wires a SystemService against the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// StubFlexClient returns a canned flex report without network access.
type StubFlexClient struct {
	Report ibkr.FlexQueryResponse
	Err    error
}

// RequestFlexReport implements ibkr.Client.
func (c *StubFlexClient) RequestFlexReport(_ context.Context, _ string, _ int) (ibkr.FlexQueryResponse, error) {
	if c.Err != nil {
		return ibkr.FlexQueryResponse{}, c.Err
	}
	return c.Report, nil
}

// NewTestIbkrSyncService wires an IbkrSyncService with the given flex
// client and a freshly generated fernet key.
func NewTestIbkrSyncService(t *testing.T, db *sql.DB, client ibkr.Client) *service.IbkrSyncService {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}

	svc, err := service.NewIbkrSyncService(
		client,
		repository.NewIbkrRepository(db),
		repository.NewAccountRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewPositionRepository(db),
		repository.NewDividendRepository(db),
		key.Encode(),
	)
	if err != nil {
		t.Fatalf("Failed to create ibkr sync service: %v", err)
	}
	return svc
}
