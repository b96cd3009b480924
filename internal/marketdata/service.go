package marketdata

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceOracle supplies current market prices for valuation. The ok result
// is false when no price is available; callers value the position at zero
// instead of failing.
type PriceOracle interface {
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error)
}

// PriceService is the PriceOracle backed by the Yahoo chart client.
type PriceService struct {
	client *Client
}

// NewPriceService creates a new PriceService with the provided client.
func NewPriceService(client *Client) *PriceService {
	return &PriceService{client: client}
}

// GetCurrentPrice returns the latest closing price for a symbol.
func (s *PriceService) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	quote, ok, err := s.client.LatestClose(ctx, symbol)
	if err != nil {
		return decimal.Zero, false, err
	}
	if !ok {
		return decimal.Zero, false, nil
	}
	return decimal.NewFromFloat(quote.Close), true, nil
}
