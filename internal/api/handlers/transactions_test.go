package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ts := testutil.NewTestTransactionService(t, db, testutil.NewStaticPriceOracle(nil))
	return NewTransactionHandler(ts), db
}

func TestTransactionHandler_TransactionsPerAccount(t *testing.T) {
	t.Run("returns transactions for account", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.CreateAccount(t, db)
		testutil.NewTransaction(account.ID).WithSymbol("AAPL").Build(t, db)
		testutil.NewTransaction(account.ID).WithSymbol("MSFT").Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/account/"+account.ID+"/transactions",
			map[string]string{"uuid": account.ID},
		)
		w := httptest.NewRecorder()

		handler.TransactionsPerAccount(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Errorf("Expected 2 transactions, got %d", len(response))
		}
	})

	t.Run("returns empty array when account has no transactions", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.CreateAccount(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/account/"+account.ID+"/transactions",
			map[string]string{"uuid": account.ID},
		)
		w := httptest.NewRecorder()

		handler.TransactionsPerAccount(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}
		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d transactions", len(response))
		}
	})

	t.Run("returns 500 on database error", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.CreateAccount(t, db)
		db.Close()

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/account/"+account.ID+"/transactions",
			map[string]string{"uuid": account.ID},
		)
		w := httptest.NewRecorder()

		handler.TransactionsPerAccount(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("creates buy and opens a tax lot", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.CreateAccount(t, db)

		body := `{
			"accountId": "` + account.ID + `",
			"symbol": "AAPL",
			"date": "2024-01-15",
			"type": "buy",
			"shares": "50",
			"pricePerShare": "100.50"
		}`

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/transaction", body)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected transaction ID to be set")
		}
		if response.Type != "buy" {
			t.Errorf("Expected type buy, got %s", response.Type)
		}

		testutil.AssertRowCount(t, db, "tax_lot", 1)
	})

	t.Run("returns 400 on invalid JSON", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/transaction", "invalid json")
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on missing required fields", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		body := `{
			"date": "2024-01-15",
			"type": "buy"
		}`

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/transaction", body)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on invalid transaction type", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.CreateAccount(t, db)

		body := `{
			"accountId": "` + account.ID + `",
			"symbol": "AAPL",
			"date": "2024-01-15",
			"type": "transfer",
			"shares": "50",
			"pricePerShare": "100.50"
		}`

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/transaction", body)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 when account does not exist", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		body := `{
			"accountId": "` + testutil.MakeID() + `",
			"symbol": "AAPL",
			"date": "2024-01-15",
			"type": "buy",
			"shares": "50",
			"pricePerShare": "100.50"
		}`

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/transaction", body)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 when sell exceeds open lots", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.CreateAccount(t, db)
		testutil.NewTaxLot(account.ID).WithSymbol("AAPL").WithShares("10").Build(t, db)

		body := `{
			"accountId": "` + account.ID + `",
			"symbol": "AAPL",
			"date": "2024-01-15",
			"type": "sell",
			"shares": "50",
			"pricePerShare": "100.50"
		}`

		req := testutil.NewRequestWithBody(http.MethodPost, "/api/transaction", body)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}

		// The rejected sell must not be recorded
		testutil.AssertRowCount(t, db, "transaction", 0)
	})
}
