package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LongTermHoldingDays is the holding period, in days, at which a position
// qualifies for long-term capital gains treatment.
const LongTermHoldingDays = 365

// TaxLot represents one discrete purchase of a security in one account.
// Multiple same-day purchases are distinct lots; (accountId, symbol,
// purchaseDate) is not unique.
//
// SharesPurchased, CostPerShare and Commission are immutable once the lot
// is created. SharesRemaining is decremented only by sale execution and
// never drops below zero. Long-term status is not stored; it is derived
// from PurchaseDate at evaluation time (see IsLongTermAt) and frozen onto
// TaxLotSale records when a sale is executed.
type TaxLot struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"accountId"`
	Symbol          string          `json:"symbol"`
	PurchaseDate    time.Time       `json:"purchaseDate"`
	SharesPurchased decimal.Decimal `json:"sharesPurchased"`
	SharesRemaining decimal.Decimal `json:"sharesRemaining"`
	CostPerShare    decimal.Decimal `json:"costPerShare"`
	Commission      decimal.Decimal `json:"commission"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
}

// TotalCost returns the full acquisition cost of the lot:
// sharesPurchased * costPerShare + commission.
func (l TaxLot) TotalCost() decimal.Decimal {
	return l.SharesPurchased.Mul(l.CostPerShare).Add(l.Commission)
}

// RemainingCostBasis returns the cost basis attributable to the shares
// still held in the lot, excluding the purchase commission.
func (l TaxLot) RemainingCostBasis() decimal.Decimal {
	return l.SharesRemaining.Mul(l.CostPerShare)
}

// IsLongTermAt reports whether the lot qualifies for long-term treatment
// when evaluated at the given time.
func (l TaxLot) IsLongTermAt(at time.Time) bool {
	return l.DaysHeldAt(at) >= LongTermHoldingDays
}

// DaysHeldAt returns the number of whole days between the purchase date
// and the given evaluation time.
func (l TaxLot) DaysHeldAt(at time.Time) int {
	return int(at.Sub(l.PurchaseDate).Hours() / 24)
}

// TaxLotSale represents one sale event's allocation against one lot.
// Records are immutable history: IsLongTerm is frozen from the lot's
// holding period as of SaleDate and is never re-evaluated. One sale event
// spanning multiple lots produces one TaxLotSale per lot touched.
type TaxLotSale struct {
	ID                string          `json:"id"`
	TaxLotID          string          `json:"taxLotId"`
	AccountID         string          `json:"accountId"`
	Symbol            string          `json:"symbol"`
	SaleDate          time.Time       `json:"saleDate"`
	SharesSold        decimal.Decimal `json:"sharesSold"`
	SalePricePerShare decimal.Decimal `json:"salePricePerShare"`
	Commission        decimal.Decimal `json:"commission"`
	CostBasis         decimal.Decimal `json:"costBasis"`
	RealizedGainLoss  decimal.Decimal `json:"realizedGainLoss"`
	IsLongTerm        bool            `json:"isLongTerm"`
	LotMethod         string          `json:"lotMethod"`
	CreatedAt         time.Time       `json:"createdAt,omitempty"`
}

// LotCostBasis is the per-lot view inside a cost basis report.
type LotCostBasis struct {
	LotID              string          `json:"lotId"`
	PurchaseDate       time.Time       `json:"purchaseDate"`
	SharesRemaining    decimal.Decimal `json:"sharesRemaining"`
	CostPerShare       decimal.Decimal `json:"costPerShare"`
	CostBasis          decimal.Decimal `json:"costBasis"`
	CurrentValue       decimal.Decimal `json:"currentValue"`
	UnrealizedGainLoss decimal.Decimal `json:"unrealizedGainLoss"`
	UnrealizedPct      decimal.Decimal `json:"unrealizedPct"`
	IsLongTerm         bool            `json:"isLongTerm"`
	DaysHeld           int             `json:"daysHeld"`
}

// CostBasisReport aggregates the open lots of one (account, symbol) pair
// valued at the current market price. It is a pure read over lot state.
type CostBasisReport struct {
	AccountID           string          `json:"accountId"`
	Symbol              string          `json:"symbol"`
	CurrentPrice        decimal.Decimal `json:"currentPrice"`
	Lots                []LotCostBasis  `json:"lots"`
	TotalShares         decimal.Decimal `json:"totalShares"`
	TotalCostBasis      decimal.Decimal `json:"totalCostBasis"`
	TotalCurrentValue   decimal.Decimal `json:"totalCurrentValue"`
	TotalUnrealized     decimal.Decimal `json:"totalUnrealizedGainLoss"`
	WeightedAverageCost decimal.Decimal `json:"weightedAverageCost"`
}

// HarvestOpportunity describes one open lot carrying an unrealized loss,
// with the estimated tax savings from realizing it.
type HarvestOpportunity struct {
	LotID              string          `json:"lotId"`
	Symbol             string          `json:"symbol"`
	PurchaseDate       time.Time       `json:"purchaseDate"`
	SharesRemaining    decimal.Decimal `json:"sharesRemaining"`
	CostBasis          decimal.Decimal `json:"costBasis"`
	CurrentValue       decimal.Decimal `json:"currentValue"`
	UnrealizedLoss     decimal.Decimal `json:"unrealizedLoss"`
	IsLongTerm         bool            `json:"isLongTerm"`
	EstimatedTaxSaving decimal.Decimal `json:"estimatedTaxSaving"`
}

// TaxReport summarizes realized and unrealized gains for one calendar
// year. Gains and losses are kept as separate signed subtotals so both
// net and gross figures are derivable. Realized figures partition on the
// IsLongTerm flag frozen on each sale; unrealized figures cover all
// currently open lots regardless of year.
type TaxReport struct {
	AccountID          string          `json:"accountId"`
	TaxYear            int             `json:"taxYear"`
	ShortTermGains     decimal.Decimal `json:"shortTermGains"`
	ShortTermLosses    decimal.Decimal `json:"shortTermLosses"`
	LongTermGains      decimal.Decimal `json:"longTermGains"`
	LongTermLosses     decimal.Decimal `json:"longTermLosses"`
	NetShortTerm       decimal.Decimal `json:"netShortTerm"`
	NetLongTerm        decimal.Decimal `json:"netLongTerm"`
	UnrealizedGains    decimal.Decimal `json:"unrealizedGains"`
	UnrealizedLosses   decimal.Decimal `json:"unrealizedLosses"`
	LongTermPercentage decimal.Decimal `json:"longTermPercentage"`
	SaleCount          int             `json:"saleCount"`
	Sales              []TaxLotSale    `json:"sales"`
}

// ReconciliationMismatch reports a symbol whose regenerated lot shares
// disagree with the quantity in the holdings store. The regeneration job
// reports mismatches; it never auto-corrects them.
type ReconciliationMismatch struct {
	AccountID       string          `json:"accountId"`
	Symbol          string          `json:"symbol"`
	LotShares       decimal.Decimal `json:"lotShares"`
	HoldingQuantity decimal.Decimal `json:"holdingQuantity"`
	Difference      decimal.Decimal `json:"difference"`
}

// LotGenerationResult summarizes one lot regeneration run for an account.
type LotGenerationResult struct {
	AccountID      string                   `json:"accountId"`
	LotsCreated    int                      `json:"lotsCreated"`
	SalesReplayed  int                      `json:"salesReplayed"`
	SkippedRecords int                      `json:"skippedRecords"`
	Mismatches     []ReconciliationMismatch `json:"mismatches"`
}
