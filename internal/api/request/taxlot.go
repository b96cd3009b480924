package request

// SimulateSaleRequest is the body for a sale preview. SaleDate defaults to
// today when omitted; LotIDs is only consulted when method is "specific".
type SimulateSaleRequest struct {
	Symbol    string   `json:"symbol"`
	Shares    string   `json:"shares"`
	SalePrice string   `json:"salePrice"`
	SaleDate  string   `json:"saleDate,omitempty"`
	Method    string   `json:"method"`
	LotIDs    []string `json:"lotIds,omitempty"`
}

// ExecuteSaleRequest is the body for a committed sale. It carries the same
// fields as the preview plus an optional commission.
type ExecuteSaleRequest struct {
	SimulateSaleRequest
	Commission string `json:"commission,omitempty"`
}
