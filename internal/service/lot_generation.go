package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/taxlot"
	"golang.org/x/sync/errgroup"
)

// RegenerateLots rebuilds the tax lot ledger for one account from its
// full trade history. Existing lots (and their sale records, via cascade)
// are deleted first, so re-running with no new transactions always
// produces an identical ledger.
//
// The replay walks buys and sells chronologically: buys create lots,
// sells consume them under FIFO and leave frozen sale records, exactly as
// ExecuteSale would have at the time. A malformed record, or a sell that
// exceeds the open shares at that point in the history, is logged and
// skipped rather than aborting the whole rebuild.
//
// After rebuilding, the per-symbol share totals are reconciled against
// the broker-reported holdings store; mismatches are reported, never
// auto-corrected.
func (s *TaxLotService) RegenerateLots(ctx context.Context, accountID string) (model.LotGenerationResult, error) {
	if _, err := s.accountRepo.GetAccount(accountID); err != nil {
		return model.LotGenerationResult{}, err
	}

	unlock := s.locks.lock(lotLockKey(accountID, "*"))
	defer unlock()

	history, err := s.transactionRepo.GetTradeHistory(accountID)
	if err != nil {
		return model.LotGenerationResult{}, err
	}

	result := model.LotGenerationResult{AccountID: accountID}

	// Replay in memory first; persistence happens in one transaction once
	// the whole history has been applied.
	lotsBySymbol := map[string][]*model.TaxLot{}
	var sales []model.TaxLotSale

	for _, t := range history {
		switch t.Type {
		case model.TransactionTypeBuy:
			if t.Shares.LessThanOrEqual(decimal.Zero) || t.PricePerShare.IsNegative() {
				log.Warn().
					Str("transaction_id", t.ID).
					Str("symbol", t.Symbol).
					Msg("skipping malformed buy during lot regeneration")
				result.SkippedRecords++
				continue
			}
			lot := &model.TaxLot{
				ID:              uuid.New().String(),
				AccountID:       accountID,
				Symbol:          t.Symbol,
				PurchaseDate:    t.Date.UTC(),
				SharesPurchased: t.Shares,
				SharesRemaining: t.Shares,
				CostPerShare:    t.PricePerShare,
				Commission:      t.Commission,
			}
			lotsBySymbol[t.Symbol] = append(lotsBySymbol[t.Symbol], lot)
			result.LotsCreated++

		case model.TransactionTypeSell:
			saleRecords, ok := replaySell(accountID, lotsBySymbol[t.Symbol], t)
			if !ok {
				log.Warn().
					Str("transaction_id", t.ID).
					Str("symbol", t.Symbol).
					Str("shares", t.Shares.String()).
					Msg("skipping sell exceeding open shares during lot regeneration")
				result.SkippedRecords++
				continue
			}
			sales = append(sales, saleRecords...)
			result.SalesReplayed++
		}
	}

	tx, err := s.lotRepo.BeginTx(ctx)
	if err != nil {
		return model.LotGenerationResult{}, err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.lotRepo.DeleteLotsForAccountTx(tx, accountID); err != nil {
		return model.LotGenerationResult{}, err
	}

	symbols := make([]string, 0, len(lotsBySymbol))
	for symbol, lots := range lotsBySymbol {
		symbols = append(symbols, symbol)
		for _, lot := range lots {
			if err := s.lotRepo.InsertLotTx(tx, lot); err != nil {
				return model.LotGenerationResult{}, err
			}
		}
	}
	for i := range sales {
		if err := s.lotRepo.InsertSaleTx(tx, &sales[i]); err != nil {
			return model.LotGenerationResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.LotGenerationResult{}, err
	}

	sort.Strings(symbols)
	mismatches, err := s.reconcile(accountID, symbols, lotsBySymbol)
	if err != nil {
		return model.LotGenerationResult{}, err
	}
	result.Mismatches = mismatches

	log.Info().
		Str("account_id", accountID).
		Int("lots_created", result.LotsCreated).
		Int("sales_replayed", result.SalesReplayed).
		Int("skipped", result.SkippedRecords).
		Int("mismatches", len(result.Mismatches)).
		Msg("tax lot regeneration complete")

	return result, nil
}

// replaySell consumes in-memory lots for one historical sell under FIFO
// and returns the frozen sale records. Returns ok false when the open
// shares at that point in history cannot cover the sell.
func replaySell(accountID string, lots []*model.TaxLot, t model.Transaction) ([]model.TaxLotSale, bool) {
	if t.Shares.LessThanOrEqual(decimal.Zero) || t.PricePerShare.IsNegative() {
		return nil, false
	}

	snapshot := make([]model.TaxLot, 0, len(lots))
	for _, lot := range lots {
		snapshot = append(snapshot, *lot)
	}

	allocations, err := taxlot.Allocate(snapshot, t.Shares, t.PricePerShare, t.Date, taxlot.FIFO, nil)
	if err != nil {
		return nil, false
	}
	commissionParts := taxlot.ProrateCommission(t.Commission, allocations)

	byID := make(map[string]*model.TaxLot, len(lots))
	for _, lot := range lots {
		byID[lot.ID] = lot
	}

	sales := make([]model.TaxLotSale, 0, len(allocations))
	for i, alloc := range allocations {
		lot := byID[alloc.Lot.ID]
		lot.SharesRemaining = lot.SharesRemaining.Sub(alloc.SharesSold)

		sales = append(sales, model.TaxLotSale{
			ID:                uuid.New().String(),
			TaxLotID:          lot.ID,
			AccountID:         accountID,
			Symbol:            t.Symbol,
			SaleDate:          t.Date.UTC(),
			SharesSold:        alloc.SharesSold,
			SalePricePerShare: t.PricePerShare,
			Commission:        commissionParts[i],
			CostBasis:         alloc.CostBasis,
			RealizedGainLoss:  alloc.RealizedGainLoss.Sub(commissionParts[i]),
			IsLongTerm:        alloc.IsLongTerm,
			LotMethod:         string(taxlot.FIFO),
		})
	}

	return sales, true
}

// reconcile compares regenerated per-symbol share totals against the
// broker-reported holdings store.
func (s *TaxLotService) reconcile(accountID string, symbols []string, lotsBySymbol map[string][]*model.TaxLot) ([]model.ReconciliationMismatch, error) {
	mismatches := []model.ReconciliationMismatch{}

	// Positions with no lots at all are mismatches too.
	positions, err := s.positionRepo.GetPositions(accountID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, symbol := range symbols {
		seen[symbol] = true
	}
	for _, p := range positions {
		if !seen[p.Symbol] {
			symbols = append(symbols, p.Symbol)
		}
	}

	for _, symbol := range symbols {
		lotShares := decimal.Zero
		for _, lot := range lotsBySymbol[symbol] {
			lotShares = lotShares.Add(lot.SharesRemaining)
		}

		holding, err := s.positionRepo.GetHoldingQuantity(accountID, symbol)
		if err != nil {
			return nil, err
		}

		if !lotShares.Equal(holding) {
			mismatches = append(mismatches, model.ReconciliationMismatch{
				AccountID:       accountID,
				Symbol:          symbol,
				LotShares:       lotShares,
				HoldingQuantity: holding,
				Difference:      lotShares.Sub(holding),
			})
		}
	}

	return mismatches, nil
}

// RegenerateAllAccounts rebuilds the ledger of every account. Accounts
// are processed concurrently; per-account locking inside RegenerateLots
// keeps each rebuild isolated. The first failure cancels the rest.
func (s *TaxLotService) RegenerateAllAccounts(ctx context.Context) ([]model.LotGenerationResult, error) {
	accounts, err := s.accountRepo.GetAccounts()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	results := make([]model.LotGenerationResult, 0, len(accounts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, account := range accounts {
		account := account
		g.Go(func() error {
			result, err := s.RegenerateLots(ctx, account.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].AccountID < results[j].AccountID })

	return results, nil
}
