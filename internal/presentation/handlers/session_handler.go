package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/tax-harvester/internal/application/services"
	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

// SessionHandler handles HTTP requests for harvesting sessions
type SessionHandler struct {
	service *services.HarvestService
	logger  *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service *services.HarvestService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger,
	}
}

// ReplaceSelectionRequest is the body of PUT /sessions/{sessionID}/selection
type ReplaceSelectionRequest struct {
	IDs []string `json:"ids"`
}

// PageSelectionRequest is the body of PUT /sessions/{sessionID}/holdings/page-selection
type PageSelectionRequest struct {
	Selected bool   `json:"selected"`
	Coin     string `json:"coin"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// RegisterRoutes registers the session routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.StartSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.EndSession)

		r.Get("/selection", h.GetSelection)
		r.Put("/selection", h.ReplaceSelection)
		r.Delete("/selection", h.ClearSelection)
		r.Get("/selection/{id}", h.IsSelected)
		r.Post("/selection/{id}/toggle", h.ToggleSelection)

		r.Get("/summary", h.GetSummary)

		r.Get("/holdings", h.GetHoldings)
		r.Post("/holdings/sort/{column}", h.ToggleSort)
		r.Put("/holdings/page-selection", h.SelectPage)
	})
}

// StartSession handles POST /api/v1/sessions
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	response, err := h.service.StartSession(r.Context())
	if err != nil {
		h.logger.Error("Failed to start session", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	h.respondJSON(w, http.StatusCreated, response)
}

// GetSession handles GET /api/v1/sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get session")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// EndSession handles DELETE /api/v1/sessions/{sessionID}
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.EndSession(r.Context(), sessionID); err != nil {
		h.respondServiceError(w, err, "Failed to end session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSelection handles GET /api/v1/sessions/{sessionID}/selection
func (h *SessionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetSelection(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get selection")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// ReplaceSelection handles PUT /api/v1/sessions/{sessionID}/selection
func (h *SessionHandler) ReplaceSelection(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req ReplaceSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.service.ReplaceSelection(r.Context(), sessionID, req.IDs)
	if err != nil {
		h.respondServiceError(w, err, "Failed to replace selection")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// ClearSelection handles DELETE /api/v1/sessions/{sessionID}/selection
func (h *SessionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	response, err := h.service.ClearSelection(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to clear selection")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// IsSelected handles GET /api/v1/sessions/{sessionID}/selection/{id}
func (h *SessionHandler) IsSelected(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	holdingID, ok := h.holdingID(w, r)
	if !ok {
		return
	}

	response, err := h.service.IsSelected(r.Context(), sessionID, holdingID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to check selection")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// ToggleSelection handles POST /api/v1/sessions/{sessionID}/selection/{id}/toggle
func (h *SessionHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	holdingID, ok := h.holdingID(w, r)
	if !ok {
		return
	}

	response, err := h.service.ToggleSelection(r.Context(), sessionID, holdingID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to toggle selection")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetSummary handles GET /api/v1/sessions/{sessionID}/summary
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetSummary(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to compute summary")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetHoldings handles GET /api/v1/sessions/{sessionID}/holdings
func (h *SessionHandler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	q, err := parseGridQuery(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sort column")
		return
	}

	response, err := h.service.GetSessionHoldings(r.Context(), sessionID, q)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get holdings")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// ToggleSort handles POST /api/v1/sessions/{sessionID}/holdings/sort/{column}
func (h *SessionHandler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	column, err := entities.ParseSortColumn(chi.URLParam(r, "column"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sort column")
		return
	}

	response, err := h.service.ToggleSort(r.Context(), sessionID, column)
	if err != nil {
		h.respondServiceError(w, err, "Failed to toggle sort")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// SelectPage handles PUT /api/v1/sessions/{sessionID}/holdings/page-selection
func (h *SessionHandler) SelectPage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req PageSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit < 0 || req.Limit > entities.MaxPageSize || req.Offset < 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid page window")
		return
	}

	q := entities.GridQuery{
		Filter: strings.TrimSpace(req.Coin),
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	response, err := h.service.SelectPage(r.Context(), sessionID, q, req.Selected)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update page selection")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "sessionID")
	if !isValidSessionID(id) {
		h.respondError(w, http.StatusBadRequest, "Invalid session id")
		return "", false
	}
	return strings.ToLower(id), true
}

func (h *SessionHandler) holdingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := holdingIDParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid holding id")
		return "", false
	}
	return id, true
}

func (h *SessionHandler) respondServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, entities.ErrSessionNotInitialized):
		h.respondError(w, http.StatusNotFound, "session not initialized")
	case errors.Is(err, entities.ErrSelectionNotInitialized):
		h.respondError(w, http.StatusNotFound, "selection not initialized")
	case errors.Is(err, entities.ErrInvalidSortColumn):
		h.respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(message, zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, message)
	}
}

func (h *SessionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *SessionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
