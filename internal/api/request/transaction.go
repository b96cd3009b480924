package request

// CreateTransactionRequest is the body for recording a buy or sell.
// Monetary fields are decimal strings so share counts and prices round-trip
// without float drift.
type CreateTransactionRequest struct {
	AccountID     string `json:"accountId"`
	Symbol        string `json:"symbol"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	Shares        string `json:"shares"`
	PricePerShare string `json:"pricePerShare"`
	Commission    string `json:"commission,omitempty"`
}
