package service

import (
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/model"
	"github.com/sankalp404/quantmatrix-sub000/internal/repository"
)

// DividendService handles dividend-related business logic operations.
type DividendService struct {
	dividendRepo *repository.DividendRepository
}

// NewDividendService creates a new DividendService with the provided repository dependencies.
func NewDividendService(dividendRepo *repository.DividendRepository) *DividendService {
	return &DividendService{dividendRepo: dividendRepo}
}

// GetDividendSummary lists an account's dividends with their total.
func (s *DividendService) GetDividendSummary(accountID string) (model.DividendSummary, error) {
	dividends, err := s.dividendRepo.GetDividendsForAccount(accountID)
	if err != nil {
		return model.DividendSummary{}, err
	}

	total := decimal.Zero
	for _, d := range dividends {
		total = total.Add(d.Amount)
	}

	return model.DividendSummary{
		AccountID: accountID,
		Dividends: dividends,
		Total:     total,
	}, nil
}
