package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/tax-harvester/internal/application/services"
	"github.com/bimakw/tax-harvester/internal/domain/entities"
)

// HoldingsHandler handles HTTP requests for the holdings grid and the baseline
type HoldingsHandler struct {
	holdings *services.HoldingsService
	harvest  *services.HarvestService
	logger   *zap.Logger
}

// NewHoldingsHandler creates a new holdings handler
func NewHoldingsHandler(holdings *services.HoldingsService, harvest *services.HarvestService, logger *zap.Logger) *HoldingsHandler {
	return &HoldingsHandler{
		holdings: holdings,
		harvest:  harvest,
		logger:   logger,
	}
}

// RegisterRoutes registers the holdings routes
func (h *HoldingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/holdings", h.ListHoldings)
	r.Get("/holdings/{id}", h.GetHolding)
	r.Get("/gains/baseline", h.GetBaseline)
	r.Get("/gains/baseline/{term}", h.GetBaselineTerm)
}

// ListHoldings handles GET /api/v1/holdings
func (h *HoldingsHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := parseGridQuery(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sort column")
		return
	}

	response, err := h.holdings.ListHoldings(ctx, q)
	if err != nil {
		h.logger.Error("Failed to list holdings", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to list holdings")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetHolding handles GET /api/v1/holdings/{id}
func (h *HoldingsHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := holdingIDParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "Invalid holding id")
		return
	}

	response, err := h.holdings.GetHolding(ctx, id)
	if err != nil {
		h.logger.Error("Failed to get holding", zap.Error(err), zap.String("id", id))
		h.respondError(w, http.StatusInternalServerError, "Failed to get holding")
		return
	}

	if response == nil {
		h.respondError(w, http.StatusNotFound, "holding not found")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetBaseline handles GET /api/v1/gains/baseline
func (h *HoldingsHandler) GetBaseline(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.harvest.GetBaseline())
}

// GetBaselineTerm handles GET /api/v1/gains/baseline/{term}
func (h *HoldingsHandler) GetBaselineTerm(w http.ResponseWriter, r *http.Request) {
	term, err := entities.ParseTerm(chi.URLParam(r, "term"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid term, use stcg or ltcg")
		return
	}

	h.respondJSON(w, http.StatusOK, h.harvest.GetBaselineTerm(term))
}

func (h *HoldingsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *HoldingsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
