package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/request"
	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/testutil"
)

// TestTransactionService_CreateTransaction tests the transaction-to-ledger flow.
//
// WHY: Transactions are the only way trades enter the system, and each one
// must drive the ledger: buys open a lot, sells consume lots, and a
// rejected sell must leave no transaction row behind.
func TestTransactionService_CreateTransaction(t *testing.T) {
	t.Run("buy creates a tax lot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db, testutil.NewStaticPriceOracle(nil))
		account := testutil.CreateAccount(t, db)

		transaction, err := svc.CreateTransaction(context.Background(), request.CreateTransactionRequest{
			AccountID:     account.ID,
			Symbol:        "AAPL",
			Date:          "2023-01-01",
			Type:          "buy",
			Shares:        "100",
			PricePerShare: "10",
			Commission:    "1",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		if !transaction.Shares.Equal(dec("100")) {
			t.Errorf("Shares = %s, want 100", transaction.Shares)
		}
		testutil.AssertRowCount(t, db, "transaction", 1)
		testutil.AssertRowCount(t, db, "tax_lot", 1)
	})

	t.Run("sell consumes open lots oldest first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db, testutil.NewStaticPriceOracle(nil))
		account := testutil.CreateAccount(t, db)

		testutil.NewTaxLot(account.ID).WithSymbol("AAPL").WithShares("100").WithCostPerShare("10").WithPurchaseDate(day(2023, 1, 1)).Build(t, db)

		_, err := svc.CreateTransaction(context.Background(), request.CreateTransactionRequest{
			AccountID:     account.ID,
			Symbol:        "AAPL",
			Date:          "2024-02-01",
			Type:          "sell",
			Shares:        "40",
			PricePerShare: "30",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "transaction", 1)
		testutil.AssertRowCount(t, db, "tax_lot_sale", 1)
	})

	t.Run("rejected sell leaves no transaction row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db, testutil.NewStaticPriceOracle(nil))
		account := testutil.CreateAccount(t, db)

		testutil.NewTaxLot(account.ID).WithSymbol("AAPL").WithShares("10").WithCostPerShare("10").Build(t, db)

		_, err := svc.CreateTransaction(context.Background(), request.CreateTransactionRequest{
			AccountID:     account.ID,
			Symbol:        "AAPL",
			Date:          "2024-02-01",
			Type:          "sell",
			Shares:        "50",
			PricePerShare: "30",
		})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("CreateTransaction() error = %v, want ErrInsufficientShares", err)
		}

		testutil.AssertRowCount(t, db, "transaction", 0)
		testutil.AssertRowCount(t, db, "tax_lot_sale", 0)
	})

	t.Run("unknown account is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db, testutil.NewStaticPriceOracle(nil))

		_, err := svc.CreateTransaction(context.Background(), request.CreateTransactionRequest{
			AccountID:     testutil.MakeID(),
			Symbol:        "AAPL",
			Date:          "2023-01-01",
			Type:          "buy",
			Shares:        "100",
			PricePerShare: "10",
		})
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			t.Errorf("CreateTransaction() error = %v, want ErrAccountNotFound", err)
		}
	})
}
