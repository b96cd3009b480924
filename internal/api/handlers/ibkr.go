package handlers

import (
	"errors"
	"net/http"

	"github.com/sankalp404/quantmatrix-sub000/internal/api/request"
	"github.com/sankalp404/quantmatrix-sub000/internal/api/response"
	"github.com/sankalp404/quantmatrix-sub000/internal/apperrors"
	"github.com/sankalp404/quantmatrix-sub000/internal/service"
	"github.com/sankalp404/quantmatrix-sub000/internal/validation"
)

// IbkrHandler handles HTTP requests for ibkr endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the ibkrSyncService.
type IbkrHandler struct {
	ibkrSyncService *service.IbkrSyncService
}

// NewIbkrHandler creates a new IbkrHandler with the provided service dependency.
func NewIbkrHandler(ibkrSyncService *service.IbkrSyncService) *IbkrHandler {
	return &IbkrHandler{
		ibkrSyncService: ibkrSyncService,
	}
}

// GetConfig handles GET requests to retrieve the flex query configuration.
// The flex token itself is never returned.
//
// Endpoint: GET /api/ibkr/config
// Response: 200 OK with IbkrConfig
// Error: 404 Not Found if no configuration has been saved
// Error: 500 Internal Server Error if retrieval fails
func (h *IbkrHandler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	config, err := h.ibkrSyncService.GetConfig()
	if err != nil {
		if errors.Is(err, apperrors.ErrIbkrConfigNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrIbkrConfigNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve ibkr config", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, config)
}

// SaveConfig handles POST requests to store flex query credentials.
// The token is encrypted before it is written.
//
// Endpoint: POST /api/ibkr/config
// Request Body: SaveIbkrConfigRequest (flexToken, flexQueryId, autoSync)
// Response: 204 No Content
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if saving fails
func (h *IbkrHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SaveIbkrConfigRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSaveIbkrConfig(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.ibkrSyncService.SaveConfig(r.Context(), req.FlexToken, req.FlexQueryID, req.AutoSync); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to save ibkr config", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Sync handles POST requests to run a flex statement import immediately.
// Imported trades flow through the same ledger paths as manually entered
// transactions.
//
// Endpoint: POST /api/ibkr/sync
// Response: 200 OK with IbkrSyncResult
// Error: 404 Not Found if no configuration has been saved
// Error: 500 Internal Server Error if the import fails
func (h *IbkrHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.ibkrSyncService.Sync(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrIbkrConfigNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrIbkrConfigNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToSyncIbkr.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
