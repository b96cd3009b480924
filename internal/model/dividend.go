package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dividend represents a dividend payment received in an account.
type Dividend struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Symbol    string          `json:"symbol"`
	PayDate   time.Time       `json:"payDate"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

// DividendSummary lists an account's dividends with their total.
type DividendSummary struct {
	AccountID string          `json:"accountId"`
	Dividends []Dividend      `json:"dividends"`
	Total     decimal.Decimal `json:"total"`
}
