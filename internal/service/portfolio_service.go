package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/marketdata"
	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
)

// PortfolioService produces the dashboard aggregation for an account:
// positions valued at oracle prices with ledger cost basis. Everything
// here is a read-only reshaping of other components' data.
type PortfolioService struct {
	accountRepo     *repository.AccountRepository
	positionRepo    *repository.PositionRepository
	lotRepo         *repository.TaxLotRepository
	dividendService *DividendService
	prices          marketdata.PriceOracle
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	accountRepo *repository.AccountRepository,
	positionRepo *repository.PositionRepository,
	lotRepo *repository.TaxLotRepository,
	dividendService *DividendService,
	prices marketdata.PriceOracle,
) *PortfolioService {
	return &PortfolioService{
		accountRepo:     accountRepo,
		positionRepo:    positionRepo,
		lotRepo:         lotRepo,
		dividendService: dividendService,
		prices:          prices,
	}
}

// GetAccountSummary aggregates one account's positions into the dashboard
// view. Positions without an available price are valued at zero.
func (s *PortfolioService) GetAccountSummary(ctx context.Context, accountID string) (model.AccountSummary, error) {
	if _, err := s.accountRepo.GetAccount(accountID); err != nil {
		return model.AccountSummary{}, err
	}

	positions, err := s.positionRepo.GetPositions(accountID)
	if err != nil {
		return model.AccountSummary{}, err
	}

	lots, err := s.lotRepo.GetOpenLotsForAccount(accountID)
	if err != nil {
		return model.AccountSummary{}, err
	}
	costBasisBySymbol := map[string]decimal.Decimal{}
	for _, lot := range lots {
		costBasisBySymbol[lot.Symbol] = costBasisBySymbol[lot.Symbol].Add(lot.RemainingCostBasis())
	}

	summary := model.AccountSummary{
		AccountID:        accountID,
		Positions:        make([]model.PositionSummary, 0, len(positions)),
		TotalMarketValue: decimal.Zero,
		TotalCostBasis:   decimal.Zero,
		TotalUnrealized:  decimal.Zero,
		TotalDividends:   decimal.Zero,
	}

	for _, p := range positions {
		price := decimal.Zero
		if quote, ok, err := s.prices.GetCurrentPrice(ctx, p.Symbol); err == nil && ok {
			price = quote
		}

		marketValue := p.Quantity.Mul(price)
		costBasis := costBasisBySymbol[p.Symbol]

		summary.Positions = append(summary.Positions, model.PositionSummary{
			Symbol:             p.Symbol,
			Quantity:           p.Quantity,
			CurrentPrice:       price,
			MarketValue:        marketValue,
			CostBasis:          costBasis,
			UnrealizedGainLoss: marketValue.Sub(costBasis),
		})

		summary.TotalMarketValue = summary.TotalMarketValue.Add(marketValue)
		summary.TotalCostBasis = summary.TotalCostBasis.Add(costBasis)
	}

	summary.TotalUnrealized = summary.TotalMarketValue.Sub(summary.TotalCostBasis)
	summary.PositionCount = len(summary.Positions)

	dividends, err := s.dividendService.GetDividendSummary(accountID)
	if err != nil {
		return model.AccountSummary{}, err
	}
	summary.TotalDividends = dividends.Total

	return summary, nil
}
