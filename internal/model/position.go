package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the broker-reported holding of one symbol in one account.
// It is maintained by the sync layer and consulted read-only by the lot
// regeneration reconciliation check.
type Position struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"averageCost"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PositionSummary is a position valued at the current market price,
// enriched with ledger cost basis for the dashboard view.
type PositionSummary struct {
	Symbol             string          `json:"symbol"`
	Quantity           decimal.Decimal `json:"quantity"`
	CurrentPrice       decimal.Decimal `json:"currentPrice"`
	MarketValue        decimal.Decimal `json:"marketValue"`
	CostBasis          decimal.Decimal `json:"costBasis"`
	UnrealizedGainLoss decimal.Decimal `json:"unrealizedGainLoss"`
}

// AccountSummary is the dashboard aggregation for one account.
type AccountSummary struct {
	AccountID          string            `json:"accountId"`
	Positions          []PositionSummary `json:"positions"`
	TotalMarketValue   decimal.Decimal   `json:"totalMarketValue"`
	TotalCostBasis     decimal.Decimal   `json:"totalCostBasis"`
	TotalUnrealized    decimal.Decimal   `json:"totalUnrealizedGainLoss"`
	TotalDividends     decimal.Decimal   `json:"totalDividends"`
	PositionCount      int               `json:"positionCount"`
}
