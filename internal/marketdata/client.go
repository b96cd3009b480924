// Package marketdata provides the price oracle: current market prices per
// symbol, fetched from the Yahoo Finance chart API. Prices are read-only
// inputs to valuation; nothing here mutates ledger state.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client fetches price data from the Yahoo Finance chart API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Yahoo Finance client with default HTTP settings.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com",
	}
}

// NewClientWithBaseURL creates a client pointing at a custom endpoint.
// Tests use this to target a local mock server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// LatestClose fetches the most recent daily closing price for a symbol.
// Uses Yahoo's range-based query (range=5d) so the latest trading day is
// included even across weekends and holidays.
//
// Returns false with a nil error when Yahoo has no data for the symbol;
// callers treat that as "price unavailable" rather than a failure.
func (c *Client) LatestClose(ctx context.Context, symbol string) (Quote, bool, error) {
	queryURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return Quote{}, false, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, false, fmt.Errorf("failed to query yahoo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Quote{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, false, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Quote{}, false, fmt.Errorf("failed to read yahoo response: %w", err)
	}

	var chart chartResponse
	if err := json.Unmarshal(data, &chart); err != nil {
		return Quote{}, false, fmt.Errorf("failed to parse yahoo response: %w", err)
	}

	if chart.Chart.Error != nil {
		return Quote{}, false, fmt.Errorf("yahoo error: %s", *chart.Chart.Error)
	}
	if len(chart.Chart.Result) == 0 {
		return Quote{}, false, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return Quote{}, false, nil
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return Quote{}, false, fmt.Errorf("mismatched data lengths in yahoo response")
	}

	// Walk backwards to the last non-zero close; Yahoo pads incomplete
	// trading days with zeroes.
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] > 0 {
			return Quote{
				Symbol:   result.Meta.Symbol,
				Currency: result.Meta.Currency,
				Close:    closes[i],
				Date:     time.Unix(result.Timestamp[i], 0).UTC(),
			}, true, nil
		}
	}

	return Quote{}, false, nil
}
