package marketdata

import "time"

// chartResponse maps the Yahoo Finance chart API response format. Only
// the fields needed for latest-close lookups are declared.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// Quote is the latest available closing price for a symbol.
type Quote struct {
	Symbol   string    `json:"symbol"`
	Currency string    `json:"currency"`
	Close    float64   `json:"close"`
	Date     time.Time `json:"date"`
}
