package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/request"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	"buy": true, "sell": true,
}

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - accountId: Must be a valid UUID
//   - symbol: Must be non-empty
//   - date: Must be in YYYY-MM-DD format
//   - type: Must be one of: buy, sell
//   - shares: Must be a positive decimal
//   - pricePerShare: Must be a positive decimal
//
// Optional fields:
//   - commission: Must be a non-negative decimal if provided
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if err := ValidateUUID(req.AccountID); err != nil {
		return err
	}

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["transactionType"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["transactionType"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	validatePositiveDecimal(errors, "shares", req.Shares)
	validatePositiveDecimal(errors, "pricePerShare", req.PricePerShare)

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

// validatePositiveDecimal records a field error unless value parses as a
// strictly positive decimal.
func validatePositiveDecimal(errors map[string]string, field, value string) {
	if strings.TrimSpace(value) == "" {
		errors[field] = field + " is required"
		return
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		errors[field] = err.Error()
		return
	}
	if !parsed.IsPositive() {
		errors[field] = field + " must be positive"
	}
}
