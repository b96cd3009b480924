package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/marketdata"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
	"github.com/sankalp404/quantmatrix-sub000/internal/taxlot"
)

// TaxLotService is the tax lot ledger. It exclusively owns the TaxLot and
// TaxLotSale lifecycles: lots are created on purchases (or in bulk by lot
// regeneration) and consumed only by sale execution. All valuation reads
// go through the price oracle and never mutate lot state.
type TaxLotService struct {
	lotRepo         *repository.TaxLotRepository
	transactionRepo *repository.TransactionRepository
	positionRepo    *repository.PositionRepository
	accountRepo     *repository.AccountRepository
	prices          marketdata.PriceOracle
	shortTermRate   decimal.Decimal
	longTermRate    decimal.Decimal

	// locks serializes lot consumption per (account, symbol) so two
	// concurrent sales cannot both see the same shares_remaining.
	locks keyedMutex
}

// NewTaxLotService creates a new TaxLotService with the provided
// repository dependencies, price oracle and flat tax rates.
func NewTaxLotService(
	lotRepo *repository.TaxLotRepository,
	transactionRepo *repository.TransactionRepository,
	positionRepo *repository.PositionRepository,
	accountRepo *repository.AccountRepository,
	prices marketdata.PriceOracle,
	shortTermRate, longTermRate decimal.Decimal,
) *TaxLotService {
	return &TaxLotService{
		lotRepo:         lotRepo,
		transactionRepo: transactionRepo,
		positionRepo:    positionRepo,
		accountRepo:     accountRepo,
		prices:          prices,
		shortTermRate:   shortTermRate,
		longTermRate:    longTermRate,
	}
}

// keyedMutex hands out one mutex per key, lazily.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func lotLockKey(accountID, symbol string) string {
	return accountID + "|" + symbol
}

// CreateLot records one discrete purchase as a new tax lot with all
// shares remaining. Idempotency is not guaranteed here; bulk replay
// callers deduplicate by regenerating from scratch instead.
func (s *TaxLotService) CreateLot(ctx context.Context, accountID, symbol string, purchaseDate time.Time, shares, costPerShare, commission decimal.Decimal) (*model.TaxLot, error) {
	if shares.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNonPositiveShares, shares)
	}
	if costPerShare.IsNegative() {
		return nil, fmt.Errorf("%w: cost per share %s", apperrors.ErrNegativeAmount, costPerShare)
	}
	if commission.IsNegative() {
		return nil, fmt.Errorf("%w: commission %s", apperrors.ErrNegativeAmount, commission)
	}

	lot := &model.TaxLot{
		ID:              uuid.New().String(),
		AccountID:       accountID,
		Symbol:          symbol,
		PurchaseDate:    purchaseDate.UTC(),
		SharesPurchased: shares,
		SharesRemaining: shares,
		CostPerShare:    costPerShare,
		Commission:      commission,
	}

	if err := s.lotRepo.InsertLot(ctx, lot); err != nil {
		return nil, err
	}

	return lot, nil
}

// GetOpenLots returns all lots for (account, symbol) with shares
// remaining, in purchase date order.
func (s *TaxLotService) GetOpenLots(accountID, symbol string) ([]model.TaxLot, error) {
	return s.lotRepo.GetOpenLots(accountID, symbol)
}

// GetCostBasisReport values the open lots of (account, symbol) at the
// oracle's current price. When no price is available, current value and
// unrealized figures are zero rather than an error. This is a pure read.
func (s *TaxLotService) GetCostBasisReport(ctx context.Context, accountID, symbol string) (model.CostBasisReport, error) {
	lots, err := s.lotRepo.GetOpenLots(accountID, symbol)
	if err != nil {
		return model.CostBasisReport{}, err
	}

	currentPrice := decimal.Zero
	if price, ok, err := s.prices.GetCurrentPrice(ctx, symbol); err == nil && ok {
		currentPrice = price
	}

	now := time.Now().UTC()
	report := model.CostBasisReport{
		AccountID:           accountID,
		Symbol:              symbol,
		CurrentPrice:        currentPrice,
		Lots:                make([]model.LotCostBasis, 0, len(lots)),
		TotalShares:         decimal.Zero,
		TotalCostBasis:      decimal.Zero,
		TotalCurrentValue:   decimal.Zero,
		TotalUnrealized:     decimal.Zero,
		WeightedAverageCost: decimal.Zero,
	}

	for _, lot := range lots {
		costBasis := lot.RemainingCostBasis()
		currentValue := lot.SharesRemaining.Mul(currentPrice)
		gainLoss := currentValue.Sub(costBasis)

		report.Lots = append(report.Lots, model.LotCostBasis{
			LotID:              lot.ID,
			PurchaseDate:       lot.PurchaseDate,
			SharesRemaining:    lot.SharesRemaining,
			CostPerShare:       lot.CostPerShare,
			CostBasis:          costBasis,
			CurrentValue:       currentValue,
			UnrealizedGainLoss: gainLoss,
			UnrealizedPct:      taxlot.UnrealizedPct(gainLoss, costBasis),
			IsLongTerm:         lot.IsLongTermAt(now),
			DaysHeld:           lot.DaysHeldAt(now),
		})

		report.TotalShares = report.TotalShares.Add(lot.SharesRemaining)
		report.TotalCostBasis = report.TotalCostBasis.Add(costBasis)
		report.TotalCurrentValue = report.TotalCurrentValue.Add(currentValue)
		report.TotalUnrealized = report.TotalUnrealized.Add(gainLoss)
	}

	if !report.TotalShares.IsZero() {
		report.WeightedAverageCost = report.TotalCostBasis.Div(report.TotalShares)
	}

	return report, nil
}

// SimulateSale previews a sale without mutating anything: lots are
// selected per the method and consumed greedily, and the per-lot results
// are aggregated with an estimated tax impact. Callers show this preview
// before confirming ExecuteSale with identical arguments.
func (s *TaxLotService) SimulateSale(ctx context.Context, accountID, symbol string, shares, salePrice decimal.Decimal, saleDate time.Time, method taxlot.Method, lotIDs []string) (taxlot.Preview, error) {
	lots, err := s.lotRepo.GetOpenLots(accountID, symbol)
	if err != nil {
		return taxlot.Preview{}, err
	}

	allocations, err := taxlot.Allocate(lots, shares, salePrice, saleDate, method, lotIDs)
	if err != nil {
		return taxlot.Preview{}, err
	}

	return taxlot.Summarize(method, allocations, s.shortTermRate, s.longTermRate), nil
}

// ExecuteSale commits a sale. It re-runs the exact selection logic of
// SimulateSale so preview and execution always agree, then applies every
// lot decrement and sale insertion in one SQL transaction: a sale across
// several lots either fully succeeds or leaves the ledger untouched.
//
// Long-term status on each TaxLotSale is frozen from the lot's holding
// period as of saleDate. Consumption is serialized per (account, symbol)
// and each decrement is compare-and-swapped on the expected remaining
// shares, so concurrent sales cannot double-spend a lot.
func (s *TaxLotService) ExecuteSale(ctx context.Context, accountID, symbol string, shares, salePrice decimal.Decimal, saleDate time.Time, method taxlot.Method, commission decimal.Decimal, lotIDs []string) ([]model.TaxLotSale, error) {
	if commission.IsNegative() {
		return nil, fmt.Errorf("%w: commission %s", apperrors.ErrNegativeAmount, commission)
	}

	unlock := s.locks.lock(lotLockKey(accountID, symbol))
	defer unlock()

	lots, err := s.lotRepo.GetOpenLots(accountID, symbol)
	if err != nil {
		return nil, err
	}

	allocations, err := taxlot.Allocate(lots, shares, salePrice, saleDate, method, lotIDs)
	if err != nil {
		return nil, err
	}
	commissionParts := taxlot.ProrateCommission(commission, allocations)

	tx, err := s.lotRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	sales := make([]model.TaxLotSale, 0, len(allocations))
	for i, alloc := range allocations {
		newRemaining := alloc.Lot.SharesRemaining.Sub(alloc.SharesSold)
		if err := s.lotRepo.UpdateSharesRemainingTx(tx, alloc.Lot.ID, newRemaining, alloc.Lot.SharesRemaining); err != nil {
			return nil, err
		}

		sale := model.TaxLotSale{
			ID:                uuid.New().String(),
			TaxLotID:          alloc.Lot.ID,
			AccountID:         accountID,
			Symbol:            symbol,
			SaleDate:          saleDate.UTC(),
			SharesSold:        alloc.SharesSold,
			SalePricePerShare: salePrice,
			Commission:        commissionParts[i],
			CostBasis:         alloc.CostBasis,
			RealizedGainLoss:  alloc.RealizedGainLoss.Sub(commissionParts[i]),
			IsLongTerm:        alloc.IsLongTerm,
			LotMethod:         string(method),
		}
		if err := s.lotRepo.InsertSaleTx(tx, &sale); err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	return sales, nil
}

// AnalyzeTaxLossHarvesting scans every open lot in the account and, for
// each lot with an unrealized loss, estimates the tax savings from
// realizing it at the applicable flat rate. Opportunities are ranked by
// estimated savings, highest first. Advisory only: nothing is sold.
func (s *TaxLotService) AnalyzeTaxLossHarvesting(ctx context.Context, accountID string) ([]model.HarvestOpportunity, error) {
	lots, err := s.lotRepo.GetOpenLotsForAccount(accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	priceBySymbol := map[string]decimal.Decimal{}

	opportunities := []model.HarvestOpportunity{}
	for _, lot := range lots {
		price, seen := priceBySymbol[lot.Symbol]
		if !seen {
			price = decimal.Zero
			if p, ok, err := s.prices.GetCurrentPrice(ctx, lot.Symbol); err == nil && ok {
				price = p
			}
			priceBySymbol[lot.Symbol] = price
		}
		if price.IsZero() {
			continue
		}

		costBasis := lot.RemainingCostBasis()
		currentValue := lot.SharesRemaining.Mul(price)
		gainLoss := currentValue.Sub(costBasis)
		if !gainLoss.IsNegative() {
			continue
		}

		longTerm := lot.IsLongTermAt(now)
		rate := s.shortTermRate
		if longTerm {
			rate = s.longTermRate
		}

		opportunities = append(opportunities, model.HarvestOpportunity{
			LotID:              lot.ID,
			Symbol:             lot.Symbol,
			PurchaseDate:       lot.PurchaseDate,
			SharesRemaining:    lot.SharesRemaining,
			CostBasis:          costBasis,
			CurrentValue:       currentValue,
			UnrealizedLoss:     gainLoss,
			IsLongTerm:         longTerm,
			EstimatedTaxSaving: gainLoss.Abs().Mul(rate),
		})
	}

	sortOpportunities(opportunities)

	return opportunities, nil
}

// GenerateTaxReport summarizes all sales inside the given calendar year,
// partitioned on the long-term flag frozen at sale time, plus the
// unrealized position of every currently open lot valued at oracle
// prices. Gains and losses stay as separate signed subtotals.
func (s *TaxLotService) GenerateTaxReport(ctx context.Context, accountID string, taxYear int) (model.TaxReport, error) {
	if taxYear < 1900 || taxYear > 2200 {
		return model.TaxReport{}, fmt.Errorf("%w: %d", apperrors.ErrInvalidTaxYear, taxYear)
	}

	sales, err := s.lotRepo.GetSalesForYear(accountID, taxYear)
	if err != nil {
		return model.TaxReport{}, err
	}

	report := model.TaxReport{
		AccountID:          accountID,
		TaxYear:            taxYear,
		ShortTermGains:     decimal.Zero,
		ShortTermLosses:    decimal.Zero,
		LongTermGains:      decimal.Zero,
		LongTermLosses:     decimal.Zero,
		UnrealizedGains:    decimal.Zero,
		UnrealizedLosses:   decimal.Zero,
		LongTermPercentage: decimal.Zero,
		SaleCount:          len(sales),
		Sales:              sales,
	}

	for _, sale := range sales {
		switch {
		case sale.IsLongTerm && sale.RealizedGainLoss.IsNegative():
			report.LongTermLosses = report.LongTermLosses.Add(sale.RealizedGainLoss)
		case sale.IsLongTerm:
			report.LongTermGains = report.LongTermGains.Add(sale.RealizedGainLoss)
		case sale.RealizedGainLoss.IsNegative():
			report.ShortTermLosses = report.ShortTermLosses.Add(sale.RealizedGainLoss)
		default:
			report.ShortTermGains = report.ShortTermGains.Add(sale.RealizedGainLoss)
		}
	}

	report.NetShortTerm = report.ShortTermGains.Add(report.ShortTermLosses)
	report.NetLongTerm = report.LongTermGains.Add(report.LongTermLosses)

	longGross := report.LongTermGains.Add(report.LongTermLosses.Abs())
	totalGross := longGross.Add(report.ShortTermGains).Add(report.ShortTermLosses.Abs())
	if !totalGross.IsZero() {
		report.LongTermPercentage = longGross.Div(totalGross).Mul(decimal.NewFromInt(100))
	}

	// Unrealized totals cover all open lots as of now, regardless of year.
	lots, err := s.lotRepo.GetOpenLotsForAccount(accountID)
	if err != nil {
		return model.TaxReport{}, err
	}

	priceBySymbol := map[string]decimal.Decimal{}
	for _, lot := range lots {
		price, seen := priceBySymbol[lot.Symbol]
		if !seen {
			price = decimal.Zero
			if p, ok, err := s.prices.GetCurrentPrice(ctx, lot.Symbol); err == nil && ok {
				price = p
			}
			priceBySymbol[lot.Symbol] = price
		}
		if price.IsZero() {
			continue
		}

		gainLoss := lot.SharesRemaining.Mul(price).Sub(lot.RemainingCostBasis())
		if gainLoss.IsNegative() {
			report.UnrealizedLosses = report.UnrealizedLosses.Add(gainLoss)
		} else {
			report.UnrealizedGains = report.UnrealizedGains.Add(gainLoss)
		}
	}

	return report, nil
}

// sortOpportunities orders harvesting opportunities by estimated tax
// saving descending, breaking ties on symbol then lot ID for stable
// output.
func sortOpportunities(opportunities []model.HarvestOpportunity) {
	sort.Slice(opportunities, func(i, j int) bool {
		a, b := opportunities[i], opportunities[j]
		if !a.EstimatedTaxSaving.Equal(b.EstimatedTaxSaving) {
			return a.EstimatedTaxSaving.GreaterThan(b.EstimatedTaxSaving)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.LotID < b.LotID
	})
}
