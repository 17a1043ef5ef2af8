package reporting

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
	"investorportal/internal/store"
	"investorportal/internal/utils"
)

// maxComputeBody caps inline histories posted for computation.
const maxComputeBody = 8 << 20

// ReportingHandler handles HTTP requests for account analytics reports
type ReportingHandler struct {
	service *AnalyticsService
	logger  *utils.AppLogger
}

func NewReportingHandler(service *AnalyticsService, logger *utils.AppLogger) *ReportingHandler {
	return &ReportingHandler{service: service, logger: logger}
}

// RegisterRoutes adds the report routes to an /api subrouter.
func (h *ReportingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/accounts/{id}/analytics", h.GetAccountAnalytics).Methods("GET")
	r.HandleFunc("/analytics", h.ComputeAnalytics).Methods("POST")
}

// GetAccountAnalytics handles requests for the analytics report of one account.
//
// Query parameters: benchmark (index symbol), inception, from and to (dates).
func (h *ReportingHandler) GetAccountAnalytics(w http.ResponseWriter, r *http.Request) {
	accountID, err := utils.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	q := ReportQuery{AccountID: accountID, Benchmark: r.URL.Query().Get("benchmark")}
	for name, dst := range map[string]**time.Time{
		"inception": &q.Inception,
		"from":      &q.From,
		"to":        &q.To,
	} {
		d, err := optionalDate(r, name)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Invalid "+name+" date: "+err.Error())
			return
		}
		*dst = d
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		h.respondWithError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	body, hit, err := h.service.Report(r.Context(), q)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Account not found")
			return
		}
		h.logger.Error("Failed to generate report for account %d: %v", accountID, err)
		h.respondWithError(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ComputeAnalytics computes a report from a history posted in the request body.
func (h *ReportingHandler) ComputeAnalytics(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxComputeBody))
	if err := dec.Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	report, err := h.service.Compute(req)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRecord) {
			h.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to compute report: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "Failed to compute report")
		return
	}
	h.respondWithJSON(w, http.StatusOK, report)
}

func optionalDate(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (h *ReportingHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

func (h *ReportingHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
