package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/request"
)

// ValidLotMethod contains the allowed lot selection method values.
var ValidLotMethod = map[string]bool{
	"fifo": true, "lifo": true, "hifo": true, "specific": true,
}

// ValidateSimulateSale validates a sale preview request.
//
// Required fields:
//   - symbol: Must be non-empty
//   - shares: Must be a positive decimal
//   - salePrice: Must be a non-negative decimal
//   - method: Must be one of: fifo, lifo, hifo, specific
//
// Optional fields:
//   - saleDate: Must be in YYYY-MM-DD format if provided
//   - lotIds: Required valid UUIDs when method is specific
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateSimulateSale(req request.SimulateSaleRequest) error {
	errors := make(map[string]string)
	validateSaleFields(errors, req)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateExecuteSale validates a committed sale request. The same
// constraints as the preview apply, plus a non-negative commission.
func ValidateExecuteSale(req request.ExecuteSaleRequest) error {
	errors := make(map[string]string)
	validateSaleFields(errors, req.SimulateSaleRequest)

	if req.Commission != "" {
		if commission, err := decimal.NewFromString(req.Commission); err != nil {
			errors["commission"] = err.Error()
		} else if commission.IsNegative() {
			errors["commission"] = "commission cannot be negative"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func validateSaleFields(errors map[string]string, req request.SimulateSaleRequest) {
	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	validatePositiveDecimal(errors, "shares", req.Shares)

	if strings.TrimSpace(req.SalePrice) == "" {
		errors["salePrice"] = "salePrice is required"
	} else if price, err := decimal.NewFromString(req.SalePrice); err != nil {
		errors["salePrice"] = err.Error()
	} else if price.IsNegative() {
		errors["salePrice"] = "salePrice cannot be negative"
	}

	if req.SaleDate != "" {
		if _, err := time.Parse("2006-01-02", req.SaleDate); err != nil {
			errors["saleDate"] = err.Error()
		}
	}

	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		errors["method"] = "method is required"
	} else if !ValidLotMethod[method] {
		errors["method"] = fmt.Sprintf("invalid method: %s", req.Method)
	}

	if method == "specific" {
		if err := ValidateUUIDs(req.LotIDs); err != nil {
			errors["lotIds"] = err.Error()
		}
	}
}
