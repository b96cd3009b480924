package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/testutil"
)

// TestPortfolioService_GetAccountSummary tests the dashboard aggregation.
//
// WHY: The summary joins broker-reported positions, oracle prices and
// ledger cost basis, and must degrade gracefully when a price is missing
// rather than failing the whole view.
func TestPortfolioService_GetAccountSummary(t *testing.T) {
	t.Run("values positions at oracle prices against ledger cost basis", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		oracle := testutil.NewStaticPriceOracle(map[string]string{"AAPL": "30"})
		svc := testutil.NewTestPortfolioService(t, db, oracle)
		account := testutil.CreateAccount(t, db)

		testutil.CreatePosition(t, db, account.ID, "AAPL", "100")
		testutil.NewTaxLot(account.ID).WithSymbol("AAPL").WithShares("100").WithCostPerShare("10").Build(t, db)
		testutil.CreateDividend(t, db, account.ID, "AAPL", "25", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

		summary, err := svc.GetAccountSummary(context.Background(), account.ID)
		if err != nil {
			t.Fatalf("GetAccountSummary() returned unexpected error: %v", err)
		}

		if summary.PositionCount != 1 {
			t.Fatalf("PositionCount = %d, want 1", summary.PositionCount)
		}
		if !summary.TotalMarketValue.Equal(dec("3000")) {
			t.Errorf("TotalMarketValue = %s, want 3000", summary.TotalMarketValue)
		}
		if !summary.TotalCostBasis.Equal(dec("1000")) {
			t.Errorf("TotalCostBasis = %s, want 1000", summary.TotalCostBasis)
		}
		if !summary.TotalUnrealized.Equal(dec("2000")) {
			t.Errorf("TotalUnrealized = %s, want 2000", summary.TotalUnrealized)
		}
		if !summary.TotalDividends.Equal(dec("25")) {
			t.Errorf("TotalDividends = %s, want 25", summary.TotalDividends)
		}
	})

	t.Run("missing price values position at zero", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewStaticPriceOracle(nil))
		account := testutil.CreateAccount(t, db)

		testutil.CreatePosition(t, db, account.ID, "OBSCURE", "10")

		summary, err := svc.GetAccountSummary(context.Background(), account.ID)
		if err != nil {
			t.Fatalf("GetAccountSummary() returned unexpected error: %v", err)
		}
		if !summary.TotalMarketValue.IsZero() {
			t.Errorf("TotalMarketValue = %s, want 0", summary.TotalMarketValue)
		}
	})

	t.Run("unknown account is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewStaticPriceOracle(nil))

		_, err := svc.GetAccountSummary(context.Background(), testutil.MakeID())
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			t.Errorf("GetAccountSummary() error = %v, want ErrAccountNotFound", err)
		}
	})
}

// TestDividendService_GetDividendSummary tests dividend totals.
func TestDividendService_GetDividendSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestDividendService(t, db)
	account := testutil.CreateAccount(t, db)

	testutil.CreateDividend(t, db, account.ID, "AAPL", "25.50", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateDividend(t, db, account.ID, "MSFT", "10", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	summary, err := svc.GetDividendSummary(account.ID)
	if err != nil {
		t.Fatalf("GetDividendSummary() returned unexpected error: %v", err)
	}

	if len(summary.Dividends) != 2 {
		t.Errorf("Expected 2 dividends, got %d", len(summary.Dividends))
	}
	if !summary.Total.Equal(dec("35.50")) {
		t.Errorf("Total = %s, want 35.50", summary.Total)
	}
}
