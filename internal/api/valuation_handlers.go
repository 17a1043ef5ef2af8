package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"investorportal/internal/analytics"
	"investorportal/internal/calendar"
	"investorportal/internal/store"
)

// maxIngestBody caps a posted valuation batch.
const maxIngestBody = 8 << 20

// GetHistory returns the stored valuation history of an account.
//
// Query Parameters:
//   - from (optional): first date, YYYY-MM-DD
//   - to (optional): last date, YYYY-MM-DD
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.repo.Valuations(r.Context(), id, from, to)
	if errors.Is(err, store.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to load history for account %d: %v", id, err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	s.respondWithJSON(w, http.StatusOK, HistoryResponse{AccountID: id, Records: records})
}

// IngestValuations validates and stores a batch of valuations for an account.
// The body is a JSON array of {report_date, nav, portfolio_value, cash_in_out}.
// Records for dates already stored replace them; within the batch the first
// record of a date wins.
func (s *Server) IngestValuations(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid account ID")
		return
	}

	var raw []analytics.RawValuation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIngestBody)).Decode(&raw); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if len(raw) == 0 {
		s.respondWithError(w, http.StatusBadRequest, "No valuations in request")
		return
	}

	records, err := analytics.ParseValuations(raw)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.repo.UpsertValuations(r.Context(), id, records)
	if errors.Is(err, store.ErrNotFound) {
		s.respondWithError(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to store valuations for account %d: %v", id, err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to store valuations")
		return
	}

	s.logger.Info("Stored %d valuations for account %d", n, id)
	s.respondWithJSON(w, http.StatusOK, IngestResponse{
		AccountID: id,
		Upserted:  n,
		From:      calendar.Format(records[0].ReportDate),
		To:        calendar.Format(records[len(records)-1].ReportDate),
	})
}
