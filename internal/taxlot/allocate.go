package taxlot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
)

var oneHundred = decimal.NewFromInt(100)

// Allocation records the shares a sale takes from a single lot.
type Allocation struct {
	Lot              model.TaxLot    `json:"lot"`
	SharesSold       decimal.Decimal `json:"sharesSold"`
	CostBasis        decimal.Decimal `json:"costBasis"`
	Proceeds         decimal.Decimal `json:"proceeds"`
	RealizedGainLoss decimal.Decimal `json:"realizedGainLoss"`
	IsLongTerm       bool            `json:"isLongTerm"`
	DaysHeld         int             `json:"daysHeld"`
}

// Preview aggregates the allocations of one simulated or executed sale.
type Preview struct {
	Method                Method          `json:"method"`
	Allocations           []Allocation    `json:"allocations"`
	SharesSold            decimal.Decimal `json:"sharesSold"`
	TotalProceeds         decimal.Decimal `json:"totalProceeds"`
	TotalCostBasis        decimal.Decimal `json:"totalCostBasis"`
	TotalRealizedGainLoss decimal.Decimal `json:"totalRealizedGainLoss"`
	ShortTermGainLoss     decimal.Decimal `json:"shortTermGainLoss"`
	LongTermGainLoss      decimal.Decimal `json:"longTermGainLoss"`
	EstimatedTaxImpact    decimal.Decimal `json:"estimatedTaxImpact"`
}

// Allocate selects open lots for a sale and returns one allocation per lot
// touched. Lots are sorted per the method and consumed greedily until
// sharesToSell is exhausted. Nothing is mutated; the service layer applies
// allocations inside its own transaction scope.
//
// The holding-period classification on each allocation is evaluated as of
// saleDate, not the current time.
//
// For Specific, lotIDs narrows the candidate set; an unknown ID fails with
// apperrors.ErrTaxLotNotFound. For every method the total remaining shares
// of the candidate lots must cover sharesToSell, otherwise
// apperrors.ErrInsufficientShares is returned before anything else.
func Allocate(lots []model.TaxLot, sharesToSell, salePrice decimal.Decimal, saleDate time.Time, method Method, lotIDs []string) ([]Allocation, error) {
	if sharesToSell.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNonPositiveShares, sharesToSell)
	}
	if salePrice.IsNegative() {
		return nil, fmt.Errorf("%w: sale price %s", apperrors.ErrNegativeAmount, salePrice)
	}

	candidates := make([]model.TaxLot, 0, len(lots))
	if method == Specific {
		if len(lotIDs) == 0 {
			return nil, apperrors.ErrNoLotsSpecified
		}
		byID := make(map[string]model.TaxLot, len(lots))
		for _, lot := range lots {
			byID[lot.ID] = lot
		}
		for _, id := range lotIDs {
			lot, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrTaxLotNotFound, id)
			}
			candidates = append(candidates, lot)
		}
	} else {
		candidates = append(candidates, lots...)
	}

	available := decimal.Zero
	for _, lot := range candidates {
		available = available.Add(lot.SharesRemaining)
	}
	if available.LessThan(sharesToSell) {
		return nil, fmt.Errorf("%w: requested %s, available %s",
			apperrors.ErrInsufficientShares, sharesToSell, available)
	}

	SortLots(candidates, method)

	var allocations []Allocation
	remaining := sharesToSell
	for _, lot := range candidates {
		if remaining.IsZero() {
			break
		}
		if lot.SharesRemaining.LessThanOrEqual(decimal.Zero) {
			continue
		}

		take := lot.SharesRemaining
		if take.GreaterThan(remaining) {
			take = remaining
		}

		costBasis := take.Mul(lot.CostPerShare)
		proceeds := take.Mul(salePrice)
		allocations = append(allocations, Allocation{
			Lot:              lot,
			SharesSold:       take,
			CostBasis:        costBasis,
			Proceeds:         proceeds,
			RealizedGainLoss: proceeds.Sub(costBasis),
			IsLongTerm:       lot.IsLongTermAt(saleDate),
			DaysHeld:         lot.DaysHeldAt(saleDate),
		})
		remaining = remaining.Sub(take)
	}

	return allocations, nil
}

// Summarize folds allocations into a sale preview. Short-term gains are
// taxed at shortRate and long-term gains at longRate; a negative estimated
// tax impact represents tax savings from realized losses.
func Summarize(method Method, allocations []Allocation, shortRate, longRate decimal.Decimal) Preview {
	preview := Preview{
		Method:                method,
		Allocations:           allocations,
		SharesSold:            decimal.Zero,
		TotalProceeds:         decimal.Zero,
		TotalCostBasis:        decimal.Zero,
		TotalRealizedGainLoss: decimal.Zero,
		ShortTermGainLoss:     decimal.Zero,
		LongTermGainLoss:      decimal.Zero,
	}

	for _, a := range allocations {
		preview.SharesSold = preview.SharesSold.Add(a.SharesSold)
		preview.TotalProceeds = preview.TotalProceeds.Add(a.Proceeds)
		preview.TotalCostBasis = preview.TotalCostBasis.Add(a.CostBasis)
		preview.TotalRealizedGainLoss = preview.TotalRealizedGainLoss.Add(a.RealizedGainLoss)
		if a.IsLongTerm {
			preview.LongTermGainLoss = preview.LongTermGainLoss.Add(a.RealizedGainLoss)
		} else {
			preview.ShortTermGainLoss = preview.ShortTermGainLoss.Add(a.RealizedGainLoss)
		}
	}

	preview.EstimatedTaxImpact = preview.ShortTermGainLoss.Mul(shortRate).
		Add(preview.LongTermGainLoss.Mul(longRate))

	return preview
}

// ProrateCommission splits a sale commission across allocations in
// proportion to shares sold, assigning any rounding remainder to the last
// allocation so the parts always sum to the whole.
func ProrateCommission(commission decimal.Decimal, allocations []Allocation) []decimal.Decimal {
	parts := make([]decimal.Decimal, len(allocations))
	if len(allocations) == 0 || commission.IsZero() {
		for i := range parts {
			parts[i] = decimal.Zero
		}
		return parts
	}

	totalShares := decimal.Zero
	for _, a := range allocations {
		totalShares = totalShares.Add(a.SharesSold)
	}

	allocated := decimal.Zero
	for i, a := range allocations {
		if i == len(allocations)-1 {
			parts[i] = commission.Sub(allocated)
			break
		}
		part := commission.Mul(a.SharesSold).Div(totalShares).Round(2)
		parts[i] = part
		allocated = allocated.Add(part)
	}
	return parts
}

// UnrealizedPct returns gainLoss / costBasis * 100, defined as zero when
// the cost basis is zero so reporting paths never divide by zero.
func UnrealizedPct(gainLoss, costBasis decimal.Decimal) decimal.Decimal {
	if costBasis.IsZero() {
		return decimal.Zero
	}
	return gainLoss.Div(costBasis).Mul(oneHundred)
}
