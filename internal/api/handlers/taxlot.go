package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/request"
	"github.com/sankalp404/quantmatrix-sub000/internal/api/response"
	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/service"
	"github.com/sankalp404/quantmatrix-sub000/internal/taxlot"
	"github.com/sankalp404/quantmatrix-sub000/internal/validation"
)

// TaxLotHandler handles HTTP requests for the tax lot ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the taxLotService.
type TaxLotHandler struct {
	taxLotService *service.TaxLotService
}

// NewTaxLotHandler creates a new TaxLotHandler with the provided service dependency.
func NewTaxLotHandler(taxLotService *service.TaxLotService) *TaxLotHandler {
	return &TaxLotHandler{
		taxLotService: taxLotService,
	}
}

// CostBasis handles GET requests for a cost basis report of a holding.
// Values open lots at the current oracle price; a price miss yields zero
// current-value figures rather than an error.
//
// Endpoint: GET /api/taxlot/{uuid}?symbol=SYM
// Response: 200 OK with CostBasisReport
// Error: 400 Bad Request if account ID is invalid (validated by middleware) or symbol is missing
// Error: 500 Internal Server Error if the report cannot be computed
func (h *TaxLotHandler) CostBasis(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		response.RespondError(w, http.StatusBadRequest, "symbol query parameter is required", nil)
		return
	}

	report, err := h.taxLotService.GetCostBasisReport(r.Context(), accountID, symbol)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetCostBasis.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Lots handles GET requests to list open lots for a holding in purchase
// date order.
//
// Endpoint: GET /api/taxlot/{uuid}/lots?symbol=SYM
// Response: 200 OK with array of TaxLot
// Error: 400 Bad Request if account ID is invalid (validated by middleware) or symbol is missing
// Error: 500 Internal Server Error if retrieval fails
func (h *TaxLotHandler) Lots(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		response.RespondError(w, http.StatusBadRequest, "symbol query parameter is required", nil)
		return
	}

	lots, err := h.taxLotService.GetOpenLots(accountID, symbol)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, lots)
}

// SimulateSale handles POST requests to preview a sale without mutating
// any lots. The preview uses the same lot selection as a committed sale,
// so its allocations match what ExecuteSale would record.
//
// Endpoint: POST /api/taxlot/{uuid}/simulate-sale
// Request Body: SimulateSaleRequest (symbol, shares, salePrice, saleDate, method, lotIds)
// Response: 200 OK with Preview
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if a specifically identified lot does not exist
// Error: 409 Conflict if open lots cannot cover the requested shares
// Error: 500 Internal Server Error if the preview fails
func (h *TaxLotHandler) SimulateSale(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.SimulateSaleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSimulateSale(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	shares, salePrice, saleDate, method, err := saleParams(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	preview, err := h.taxLotService.SimulateSale(r.Context(), accountID, req.Symbol, shares, salePrice, saleDate, method, req.LotIDs)
	if err != nil {
		respondSaleError(w, apperrors.ErrFailedToSimulateSale, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, preview)
}

// ExecuteSale handles POST requests to commit a sale against open lots.
// Lot consumption and sale records are written in a single transaction;
// an insufficient-shares rejection leaves every lot untouched.
//
// Endpoint: POST /api/taxlot/{uuid}/execute-sale
// Request Body: ExecuteSaleRequest (symbol, shares, salePrice, saleDate, method, lotIds, commission)
// Response: 201 Created with array of TaxLotSale
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if a specifically identified lot does not exist
// Error: 409 Conflict if open lots cannot cover the requested shares
// Error: 500 Internal Server Error if the sale fails
func (h *TaxLotHandler) ExecuteSale(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.ExecuteSaleRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateExecuteSale(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	shares, salePrice, saleDate, method, err := saleParams(req.SimulateSaleRequest)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	commission := decimal.Zero
	if req.Commission != "" {
		if commission, err = decimal.NewFromString(req.Commission); err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
	}

	sales, err := h.taxLotService.ExecuteSale(r.Context(), accountID, req.Symbol, shares, salePrice, saleDate, method, commission, req.LotIDs)
	if err != nil {
		respondSaleError(w, apperrors.ErrFailedToExecuteSale, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, sales)
}

// Harvesting handles GET requests for a tax-loss-harvesting analysis.
// Returns open lots carrying unrealized losses, ranked by estimated tax
// savings descending. Advisory only; nothing is sold.
//
// Endpoint: GET /api/taxlot/{uuid}/harvesting
// Response: 200 OK with array of HarvestOpportunity
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if the analysis fails
func (h *TaxLotHandler) Harvesting(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	opportunities, err := h.taxLotService.AnalyzeTaxLossHarvesting(r.Context(), accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAnalyzeHarvest.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, opportunities)
}

// TaxReport handles GET requests for a calendar-year tax report.
// Realized figures partition by the long-term flag frozen at sale time;
// unrealized figures value currently open lots at oracle prices.
//
// Endpoint: GET /api/taxlot/{uuid}/tax-report?year=YYYY
// Response: 200 OK with TaxReport
// Error: 400 Bad Request if account ID is invalid (validated by middleware) or year is missing or invalid
// Error: 500 Internal Server Error if the report cannot be computed
func (h *TaxLotHandler) TaxReport(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		response.RespondError(w, http.StatusBadRequest, "year query parameter is required", nil)
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTaxYear.Error(), err.Error())
		return
	}

	report, err := h.taxLotService.GenerateTaxReport(r.Context(), accountID, year)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTaxYear) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTaxYear.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateReport.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Regenerate handles POST requests to rebuild an account's lots from its
// transaction history. Existing lots and their sale records are discarded
// and the full buy and sell history is replayed, then the rebuilt ledger
// is reconciled against stored holdings. Reconciliation mismatches are
// reported, never auto-corrected.
//
// Endpoint: POST /api/taxlot/{uuid}/regenerate
// Response: 200 OK with LotGenerationResult
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 404 Not Found if account not found
// Error: 500 Internal Server Error if regeneration fails
func (h *TaxLotHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	result, err := h.taxLotService.RegenerateLots(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrAccountNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// RegenerateAll handles POST requests to rebuild lots for every account.
//
// Endpoint: POST /api/taxlot/regenerate
// Response: 200 OK with array of LotGenerationResult, ordered by account ID
// Error: 500 Internal Server Error if regeneration fails
func (h *TaxLotHandler) RegenerateAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.taxLotService.RegenerateAllAccounts(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGenerateLots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, results)
}

// saleParams converts the validated string fields of a sale request into
// service arguments. The sale date defaults to today when omitted.
func saleParams(req request.SimulateSaleRequest) (shares, salePrice decimal.Decimal, saleDate time.Time, method taxlot.Method, err error) {
	if shares, err = decimal.NewFromString(req.Shares); err != nil {
		return
	}
	if salePrice, err = decimal.NewFromString(req.SalePrice); err != nil {
		return
	}
	saleDate = time.Now().UTC()
	if req.SaleDate != "" {
		if saleDate, err = time.Parse("2006-01-02", req.SaleDate); err != nil {
			return
		}
	}
	method, err = taxlot.ParseMethod(req.Method)
	return
}

// respondSaleError maps lot selection and availability errors onto HTTP
// status codes shared by the preview and execute paths.
func respondSaleError(w http.ResponseWriter, fallback error, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientShares):
		response.RespondError(w, http.StatusConflict, apperrors.ErrInsufficientShares.Error(), err.Error())
	case errors.Is(err, apperrors.ErrTaxLotNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTaxLotNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidLotMethod),
		errors.Is(err, apperrors.ErrNoLotsSpecified),
		errors.Is(err, apperrors.ErrNonPositiveShares),
		errors.Is(err, apperrors.ErrNegativeAmount):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
