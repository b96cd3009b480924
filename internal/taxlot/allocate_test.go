package taxlot_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/taxlot"
)

func lot(id string, purchaseDate time.Time, shares, costPerShare string) model.TaxLot {
	quantity := decimal.RequireFromString(shares)
	return model.TaxLot{
		ID:              id,
		AccountID:       "account-1",
		Symbol:          "TEST",
		PurchaseDate:    purchaseDate,
		SharesPurchased: quantity,
		SharesRemaining: quantity,
		CostPerShare:    decimal.RequireFromString(costPerShare),
		Commission:      decimal.Zero,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TestParseMethod tests lot method parsing.
//
// WHY: Method strings arrive from external clients and drive which lots a
// sale consumes. Anything outside the closed set must be rejected rather
// than silently falling back to a default.
func TestParseMethod(t *testing.T) {
	valid := map[string]taxlot.Method{
		"fifo":     taxlot.FIFO,
		"LIFO":     taxlot.LIFO,
		" hifo ":   taxlot.HIFO,
		"Specific": taxlot.Specific,
	}
	for input, want := range valid {
		method, err := taxlot.ParseMethod(input)
		if err != nil {
			t.Errorf("ParseMethod(%q) returned unexpected error: %v", input, err)
		}
		if method != want {
			t.Errorf("ParseMethod(%q) = %q, want %q", input, method, want)
		}
	}

	for _, input := range []string{"", "avgcost", "first-in"} {
		if _, err := taxlot.ParseMethod(input); !errors.Is(err, apperrors.ErrInvalidLotMethod) {
			t.Errorf("ParseMethod(%q) error = %v, want ErrInvalidLotMethod", input, err)
		}
	}
}

// TestAllocate_FIFOOrder tests FIFO lot consumption order.
//
// WHY: FIFO must consume the oldest lot first regardless of slice order.
// A multi-lot sale drains old lots completely before touching newer ones.
func TestAllocate_FIFOOrder(t *testing.T) {
	// Lots deliberately out of chronological order
	lots := []model.TaxLot{
		lot("lot-c", date(2023, 6, 1), "50", "20"),
		lot("lot-a", date(2023, 1, 1), "100", "10"),
		lot("lot-b", date(2023, 3, 1), "25", "15"),
	}

	allocations, err := taxlot.Allocate(lots, decimal.RequireFromString("130"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.FIFO, nil)
	if err != nil {
		t.Fatalf("Allocate() returned unexpected error: %v", err)
	}

	if len(allocations) != 3 {
		t.Fatalf("Expected 3 allocations, got %d", len(allocations))
	}

	wantOrder := []string{"lot-a", "lot-b", "lot-c"}
	for i, want := range wantOrder {
		if allocations[i].Lot.ID != want {
			t.Errorf("Allocation %d consumed %s, want %s", i, allocations[i].Lot.ID, want)
		}
	}

	// Oldest two lots drained completely, last lot partially
	if !allocations[0].SharesSold.Equal(decimal.RequireFromString("100")) {
		t.Errorf("lot-a sold %s shares, want 100", allocations[0].SharesSold)
	}
	if !allocations[1].SharesSold.Equal(decimal.RequireFromString("25")) {
		t.Errorf("lot-b sold %s shares, want 25", allocations[1].SharesSold)
	}
	if !allocations[2].SharesSold.Equal(decimal.RequireFromString("5")) {
		t.Errorf("lot-c sold %s shares, want 5", allocations[2].SharesSold)
	}
}

// TestAllocate_HIFOMinimizesGain tests that HIFO realizes the smallest gain.
//
// WHY: HIFO exists to minimize realized capital gains. For the same sale,
// the total realized gain under HIFO must never exceed FIFO's, because it
// consumes the highest cost basis first.
func TestAllocate_HIFOMinimizesGain(t *testing.T) {
	lots := []model.TaxLot{
		lot("lot-a", date(2023, 1, 1), "100", "10"),
		lot("lot-b", date(2023, 6, 1), "100", "25"),
		lot("lot-c", date(2023, 9, 1), "100", "18"),
	}
	shares := decimal.RequireFromString("150")
	price := decimal.RequireFromString("30")
	saleDate := date(2024, 2, 1)

	gain := func(method taxlot.Method) decimal.Decimal {
		allocations, err := taxlot.Allocate(lots, shares, price, saleDate, method, nil)
		if err != nil {
			t.Fatalf("Allocate(%s) returned unexpected error: %v", method, err)
		}
		total := decimal.Zero
		for _, a := range allocations {
			total = total.Add(a.RealizedGainLoss)
		}
		return total
	}

	hifoGain := gain(taxlot.HIFO)
	fifoGain := gain(taxlot.FIFO)

	if hifoGain.GreaterThan(fifoGain) {
		t.Errorf("HIFO gain %s exceeds FIFO gain %s", hifoGain, fifoGain)
	}

	// HIFO should consume lot-b ($25) fully then 50 of lot-c ($18):
	// (30-25)*100 + (30-18)*50 = 1100
	if !hifoGain.Equal(decimal.RequireFromString("1100")) {
		t.Errorf("HIFO gain = %s, want 1100", hifoGain)
	}
}

// TestAllocate_InsufficientShares tests over-sell rejection.
//
// WHY: Selling more shares than the open lots hold must fail before any
// allocation is produced. This is the primary guard against negative
// share balances.
func TestAllocate_InsufficientShares(t *testing.T) {
	lots := []model.TaxLot{
		lot("lot-a", date(2023, 1, 1), "100", "10"),
		lot("lot-b", date(2023, 6, 1), "50", "20"),
	}

	allocations, err := taxlot.Allocate(lots, decimal.RequireFromString("151"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.FIFO, nil)
	if !errors.Is(err, apperrors.ErrInsufficientShares) {
		t.Fatalf("Allocate() error = %v, want ErrInsufficientShares", err)
	}
	if allocations != nil {
		t.Errorf("Expected nil allocations on over-sell, got %d", len(allocations))
	}
}

// TestAllocate_Specific tests specific lot identification.
//
// WHY: Specific identification must honor exactly the caller's lots:
// sufficiency is judged over the selected lots only, and an unknown lot ID
// is an error rather than being silently skipped.
func TestAllocate_Specific(t *testing.T) {
	lots := []model.TaxLot{
		lot("lot-a", date(2023, 1, 1), "100", "10"),
		lot("lot-b", date(2023, 6, 1), "50", "20"),
	}

	t.Run("consumes only the identified lots", func(t *testing.T) {
		allocations, err := taxlot.Allocate(lots, decimal.RequireFromString("40"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.Specific, []string{"lot-b"})
		if err != nil {
			t.Fatalf("Allocate() returned unexpected error: %v", err)
		}
		if len(allocations) != 1 || allocations[0].Lot.ID != "lot-b" {
			t.Fatalf("Expected a single allocation against lot-b, got %+v", allocations)
		}
	})

	t.Run("fails when identified lots cannot cover the sale", func(t *testing.T) {
		// lot-b only holds 50 shares even though lot-a could cover the rest
		_, err := taxlot.Allocate(lots, decimal.RequireFromString("60"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.Specific, []string{"lot-b"})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Allocate() error = %v, want ErrInsufficientShares", err)
		}
	})

	t.Run("fails on unknown lot ID", func(t *testing.T) {
		_, err := taxlot.Allocate(lots, decimal.RequireFromString("10"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.Specific, []string{"lot-x"})
		if !errors.Is(err, apperrors.ErrTaxLotNotFound) {
			t.Errorf("Allocate() error = %v, want ErrTaxLotNotFound", err)
		}
	})

	t.Run("fails without lot IDs", func(t *testing.T) {
		_, err := taxlot.Allocate(lots, decimal.RequireFromString("10"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.Specific, nil)
		if !errors.Is(err, apperrors.ErrNoLotsSpecified) {
			t.Errorf("Allocate() error = %v, want ErrNoLotsSpecified", err)
		}
	})
}

// TestAllocate_InvalidInputs tests share and price validation.
func TestAllocate_InvalidInputs(t *testing.T) {
	lots := []model.TaxLot{lot("lot-a", date(2023, 1, 1), "100", "10")}

	if _, err := taxlot.Allocate(lots, decimal.Zero, decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.FIFO, nil); !errors.Is(err, apperrors.ErrNonPositiveShares) {
		t.Errorf("zero shares: error = %v, want ErrNonPositiveShares", err)
	}
	if _, err := taxlot.Allocate(lots, decimal.RequireFromString("10"), decimal.RequireFromString("-1"), date(2024, 2, 1), taxlot.FIFO, nil); !errors.Is(err, apperrors.ErrNegativeAmount) {
		t.Errorf("negative price: error = %v, want ErrNegativeAmount", err)
	}
}

// TestAllocate_HoldingPeriodAtSaleDate tests long/short classification.
//
// WHY: The long-term flag on an allocation must be evaluated as of the sale
// date, not "now". A lot purchased 2023-01-01 is long-term for a 2024-02-01
// sale but short-term for a 2023-06-01 sale.
func TestAllocate_HoldingPeriodAtSaleDate(t *testing.T) {
	lots := []model.TaxLot{lot("lot-a", date(2023, 1, 1), "100", "10")}
	shares := decimal.RequireFromString("10")
	price := decimal.RequireFromString("30")

	early, err := taxlot.Allocate(lots, shares, price, date(2023, 6, 1), taxlot.FIFO, nil)
	if err != nil {
		t.Fatalf("Allocate() returned unexpected error: %v", err)
	}
	if early[0].IsLongTerm {
		t.Error("Sale 151 days after purchase classified long-term")
	}

	late, err := taxlot.Allocate(lots, shares, price, date(2024, 2, 1), taxlot.FIFO, nil)
	if err != nil {
		t.Fatalf("Allocate() returned unexpected error: %v", err)
	}
	if !late[0].IsLongTerm {
		t.Error("Sale 396 days after purchase classified short-term")
	}
}

// TestSummarize tests preview aggregation and tax impact estimation.
func TestSummarize(t *testing.T) {
	lots := []model.TaxLot{
		lot("lot-a", date(2023, 1, 1), "100", "10"),
		lot("lot-b", date(2023, 6, 1), "50", "20"),
	}

	allocations, err := taxlot.Allocate(lots, decimal.RequireFromString("120"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.FIFO, nil)
	if err != nil {
		t.Fatalf("Allocate() returned unexpected error: %v", err)
	}

	preview := taxlot.Summarize(taxlot.FIFO, allocations, decimal.RequireFromString("0.35"), decimal.RequireFromString("0.15"))

	if !preview.LongTermGainLoss.Equal(decimal.RequireFromString("2000")) {
		t.Errorf("LongTermGainLoss = %s, want 2000", preview.LongTermGainLoss)
	}
	if !preview.ShortTermGainLoss.Equal(decimal.RequireFromString("200")) {
		t.Errorf("ShortTermGainLoss = %s, want 200", preview.ShortTermGainLoss)
	}
	if !preview.TotalRealizedGainLoss.Equal(decimal.RequireFromString("2200")) {
		t.Errorf("TotalRealizedGainLoss = %s, want 2200", preview.TotalRealizedGainLoss)
	}
	// 200*0.35 + 2000*0.15 = 370
	if !preview.EstimatedTaxImpact.Equal(decimal.RequireFromString("370")) {
		t.Errorf("EstimatedTaxImpact = %s, want 370", preview.EstimatedTaxImpact)
	}
}

// TestProrateCommission tests commission splitting across allocations.
//
// WHY: Commission parts must always sum exactly to the whole commission,
// including when share-proportional rounding leaves a remainder.
func TestProrateCommission(t *testing.T) {
	lots := []model.TaxLot{
		lot("lot-a", date(2023, 1, 1), "100", "10"),
		lot("lot-b", date(2023, 6, 1), "50", "20"),
		lot("lot-c", date(2023, 9, 1), "50", "25"),
	}

	allocations, err := taxlot.Allocate(lots, decimal.RequireFromString("200"), decimal.RequireFromString("30"), date(2024, 2, 1), taxlot.FIFO, nil)
	if err != nil {
		t.Fatalf("Allocate() returned unexpected error: %v", err)
	}

	// 10 does not split evenly across 100/50/50 at 2 decimal places
	commission := decimal.RequireFromString("10")
	parts := taxlot.ProrateCommission(commission, allocations)

	if len(parts) != len(allocations) {
		t.Fatalf("Expected %d parts, got %d", len(allocations), len(parts))
	}

	total := decimal.Zero
	for _, part := range parts {
		total = total.Add(part)
	}
	if !total.Equal(commission) {
		t.Errorf("Commission parts sum to %s, want %s", total, commission)
	}

	if !parts[0].Equal(decimal.RequireFromString("5")) {
		t.Errorf("First part = %s, want 5", parts[0])
	}
}

// TestUnrealizedPct tests the zero-division guard.
//
// WHY: Zero-cost lots (free shares, spin-offs) must report 0% rather than
// crashing reporting paths with a division by zero.
func TestUnrealizedPct(t *testing.T) {
	if pct := taxlot.UnrealizedPct(decimal.RequireFromString("100"), decimal.Zero); !pct.IsZero() {
		t.Errorf("UnrealizedPct with zero cost basis = %s, want 0", pct)
	}

	pct := taxlot.UnrealizedPct(decimal.RequireFromString("50"), decimal.RequireFromString("200"))
	if !pct.Equal(decimal.RequireFromString("25")) {
		t.Errorf("UnrealizedPct = %s, want 25", pct)
	}
}
