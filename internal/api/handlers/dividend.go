package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/response"
	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/service"
)

// DividendHandler handles HTTP requests for dividend endpoints.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// DividendsPerAccount handles GET requests to retrieve dividends for an account.
// Returns individual payments plus per-symbol and overall totals.
//
// Endpoint: GET /api/account/{uuid}/dividends
// Response: 200 OK with DividendSummary
// Error: 400 Bad Request if account ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) DividendsPerAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "uuid")

	summary, err := h.dividendService.GetDividendSummary(accountID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDividends.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
