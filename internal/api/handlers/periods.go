package handlers

import (
	"net/http"

	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// PeriodHandler handles period API endpoints.
type PeriodHandler struct {
	repo   *store.Repository
	logger *logger.Logger
}

// NewPeriodHandler creates a new period handler.
func NewPeriodHandler(repo *store.Repository, log *logger.Logger) *PeriodHandler {
	return &PeriodHandler{
		repo:   repo,
		logger: log,
	}
}

// List returns all ingested periods, newest first.
// GET /api/periods
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	periods, err := h.repo.IngestedPeriods(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list periods")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve periods")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(periods),
		"periods": periods,
	})
}

// Metadata returns the static feed contract.
// GET /api/metadata
func (h *PeriodHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, feed.DefaultMetadata())
}
