package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = "id, account_number, broker, name, currency, created_at"

// GetAccounts retrieves all accounts ordered by account number.
func (r *AccountRepository) GetAccounts() ([]model.Account, error) {
	rows, err := r.db.Query(`SELECT ` + accountColumns + ` FROM account ORDER BY account_number ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// GetAccount retrieves a single account by ID.
// Returns apperrors.ErrAccountNotFound if no account exists with the given ID.
func (r *AccountRepository) GetAccount(accountID string) (model.Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM account WHERE id = ?`, accountID)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, err
	}

	return account, nil
}

// GetAccountByNumber retrieves a single account by its broker account number.
// Returns apperrors.ErrAccountNotFound if no account exists with the given number.
func (r *AccountRepository) GetAccountByNumber(accountNumber string) (model.Account, error) {
	row := r.db.QueryRow(`SELECT `+accountColumns+` FROM account WHERE account_number = ?`, accountNumber)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, err
	}

	return account, nil
}

// InsertAccount inserts a new account row.
func (r *AccountRepository) InsertAccount(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account (id, account_number, broker, name, currency)
		VALUES (?, ?, ?, ?, ?)
	`, account.ID, account.AccountNumber, account.Broker, account.Name, account.Currency)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	var createdAtStr sql.NullString

	err := row.Scan(&a.ID, &a.AccountNumber, &a.Broker, &a.Name, &a.Currency, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Account{}, err
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to scan account table results: %w", err)
	}

	if createdAtStr.Valid {
		a.CreatedAt, err = ParseTime(createdAtStr.String)
		if err != nil {
			return model.Account{}, err
		}
	}

	return a, nil
}
