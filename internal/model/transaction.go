package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a buy or sell of a security in an account.
// The transaction table is the source of truth the tax lot ledger is
// reconstructed from during lot regeneration.
type Transaction struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"accountId"`
	Symbol        string          `json:"symbol"`
	Date          time.Time       `json:"date"`
	Type          string          `json:"type"`
	Shares        decimal.Decimal `json:"shares"`
	PricePerShare decimal.Decimal `json:"pricePerShare"`
	Commission    decimal.Decimal `json:"commission"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}

// Transaction type values.
const (
	TransactionTypeBuy  = "buy"
	TransactionTypeSell = "sell"
)
