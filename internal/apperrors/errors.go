package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTaxLotNotFound indicates that a tax lot with the given ID does not exist.
	ErrTaxLotNotFound = errors.New("tax lot not found")

	// ErrIbkrConfigNotFound indicates IBKR configuration has not been set up.
	ErrIbkrConfigNotFound = errors.New("ibkr configuration not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientShares indicates that a sale cannot be completed because
	// the open tax lots do not hold enough remaining shares of the symbol.
	// It is always raised before any lot is mutated.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrInvalidLotMethod indicates an unrecognized lot selection method.
	ErrInvalidLotMethod = errors.New("invalid lot selection method")

	// ErrNoLotsSpecified indicates a specific-identification sale without lot IDs.
	ErrNoLotsSpecified = errors.New("specific identification requires lot IDs")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrNonPositiveShares indicates that a share quantity is zero or negative.
	ErrNonPositiveShares = errors.New("shares must be positive")

	// ErrInvalidTaxYear indicates a tax year outside the plausible range.
	ErrInvalidTaxYear = errors.New("invalid tax year")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
// These errors indicate that an operation failed, but not due to missing entities or validation issues.
var (
	// Account operation errors
	ErrFailedToRetrieveAccounts = errors.New("failed to retrieve accounts")
	ErrFailedToRetrieveAccount  = errors.New("failed to retrieve account")
	ErrFailedToGetSummary       = errors.New("failed to get account summary")

	// Tax lot operation errors
	ErrFailedToRetrieveLots   = errors.New("failed to retrieve tax lots")
	ErrFailedToSimulateSale   = errors.New("failed to simulate sale")
	ErrFailedToExecuteSale    = errors.New("failed to execute sale")
	ErrFailedToGenerateLots   = errors.New("failed to regenerate tax lots")
	ErrFailedToGenerateReport = errors.New("failed to generate tax report")
	ErrFailedToAnalyzeHarvest = errors.New("failed to analyze tax loss harvesting")
	ErrFailedToGetCostBasis   = errors.New("failed to get cost basis report")

	// Transaction operation errors
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToCreateTransaction    = errors.New("failed to create transaction")

	// Dividend operation errors
	ErrFailedToRetrieveDividends = errors.New("failed to retrieve dividends")

	// IBKR operation errors
	ErrFailedToSyncIbkr = errors.New("failed to sync ibkr data")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., lot share totals disagree with the holdings store).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
