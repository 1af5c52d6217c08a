package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// RecordStore is the read surface the record endpoints need. A nil
// record with a nil error means no observation exists for that day.
type RecordStore interface {
	GetBySymbol(ctx context.Context, symbol string, from, to time.Time) ([]feed.FailRecord, error)
	GetBySymbolAndDate(ctx context.Context, symbol string, date time.Time) (*feed.FailRecord, error)
}

// RecordHandler handles fail-record API endpoints.
type RecordHandler struct {
	repo   RecordStore
	logger *logger.Logger
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(repo RecordStore, log *logger.Logger) *RecordHandler {
	return &RecordHandler{
		repo:   repo,
		logger: log,
	}
}

// recordView is the JSON shape of one fail record.
type recordView struct {
	Symbol         string `json:"symbol"`
	SettlementDate string `json:"settlement_date"`
	Quantity       int64  `json:"quantity"`
	Price          string `json:"price"`
	AvailableAt    string `json:"available_at"`
}

func newRecordView(r feed.FailRecord) recordView {
	return recordView{
		Symbol:         r.Symbol,
		SettlementDate: r.SettlementDate.Format("2006-01-02"),
		Quantity:       r.Quantity,
		Price:          r.Price.StringFixed(2),
		AvailableAt:    r.AvailableAt.Format(time.RFC3339),
	}
}

// GetBySymbol returns fail records for one symbol.
// GET /api/records/{symbol}?date=YYYY-MM-DD
// GET /api/records/{symbol}?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *RecordHandler) GetBySymbol(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	symbol := mux.Vars(r)["symbol"]

	q := r.URL.Query()

	if dateStr := q.Get("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
			return
		}

		record, err := h.repo.GetBySymbolAndDate(ctx, symbol, date)
		if err != nil {
			h.logger.WithError(err).Error("Failed to get record")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve record")
			return
		}
		if record == nil {
			respondError(w, http.StatusNotFound, "No record for symbol and date")
			return
		}

		respondJSON(w, http.StatusOK, newRecordView(*record))
		return
	}

	from, to, err := parseRange(q.Get("from"), q.Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.repo.GetBySymbol(ctx, symbol, from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get records")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve records")
		return
	}

	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, newRecordView(rec))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"count":   len(views),
		"records": views,
	})
}

// parseRange parses the optional from/to query params; the default window
// is the last 90 days.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -90)

	var err error
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' date format (expected YYYY-MM-DD)")
		}
	}
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' date format (expected YYYY-MM-DD)")
		}
	}

	return from, to, nil
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
