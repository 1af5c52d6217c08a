package handlers

import (
	"net/http"
	"strconv"

	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// QualityHandler handles data quality API endpoints.
type QualityHandler struct {
	gate   *store.QualityGate
	logger *logger.Logger
}

// NewQualityHandler creates a new quality handler.
func NewQualityHandler(gate *store.QualityGate, log *logger.Logger) *QualityHandler {
	return &QualityHandler{
		gate:   gate,
		logger: log,
	}
}

// LatestSnapshots returns the most recent quality snapshots.
// GET /api/quality?limit=N
func (h *QualityHandler) LatestSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected 1-100)")
			return
		}
		limit = n
	}

	snapshots, err := h.gate.LatestSnapshots(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get quality snapshots")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve quality snapshots")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(snapshots),
		"snapshots": snapshots,
	})
}
