package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Account table
		CREATE TABLE account (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_number VARCHAR(50) NOT NULL UNIQUE,
			broker VARCHAR(20) NOT NULL,
			name VARCHAR(100) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Transaction table (quoted because transaction is a reserved keyword)
		CREATE TABLE "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			date DATETIME NOT NULL,
			type VARCHAR(10) NOT NULL,
			shares TEXT NOT NULL,
			price_per_share TEXT NOT NULL,
			commission TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE
		);

		-- Tax lot table; decimal columns stored as TEXT
		CREATE TABLE tax_lot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			purchase_date DATETIME NOT NULL,
			shares_purchased TEXT NOT NULL,
			shares_remaining TEXT NOT NULL,
			cost_per_share TEXT NOT NULL,
			commission TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE
		);

		-- Tax lot sale table: immutable history of sale allocations
		CREATE TABLE tax_lot_sale (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tax_lot_id VARCHAR(36) NOT NULL,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			sale_date DATETIME NOT NULL,
			shares_sold TEXT NOT NULL,
			sale_price_per_share TEXT NOT NULL,
			commission TEXT NOT NULL DEFAULT '0',
			cost_basis TEXT NOT NULL,
			realized_gain_loss TEXT NOT NULL,
			is_long_term BOOLEAN NOT NULL,
			lot_method VARCHAR(10) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(tax_lot_id) REFERENCES tax_lot(id) ON DELETE CASCADE,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE
		);

		-- Position table: broker-reported holdings
		CREATE TABLE position (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			quantity TEXT NOT NULL,
			average_cost TEXT NOT NULL DEFAULT '0',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE,
			CONSTRAINT unique_position UNIQUE (account_id, symbol)
		);

		-- Dividend table
		CREATE TABLE dividend (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			pay_date DATETIME NOT NULL,
			amount TEXT NOT NULL,
			currency VARCHAR(3) NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE
		);

		-- IBKR configuration table
		CREATE TABLE ibkr_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			flex_token VARCHAR(500) NOT NULL,
			flex_query_id INTEGER NOT NULL,
			token_expires_at DATETIME,
			last_import_date DATETIME,
			auto_sync_enabled BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX idx_transaction_account_symbol_date ON "transaction"(account_id, symbol, date);
		CREATE INDEX idx_tax_lot_account_symbol ON tax_lot(account_id, symbol);
		CREATE INDEX idx_tax_lot_sale_account_date ON tax_lot_sale(account_id, sale_date);
	`

	_, err := db.Exec(schema)
	return err
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	// Quoted so reserved names like "transaction" work
	query := `SELECT COUNT(*) FROM "` + table + `"`
	if err := db.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "tax_lot", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
