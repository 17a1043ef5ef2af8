package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"investorportal/internal/calendar"
	"investorportal/internal/utils"
)

// respondWithError sends an error response with the specified status code and message
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response with the specified status code and payload
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to write response: %v", err)
	}
}

// accountID reads the {id} path variable.
func accountID(r *http.Request) (int, error) {
	return utils.ParseID(mux.Vars(r)["id"])
}

// dateRange reads the optional from and to query parameters.
func dateRange(r *http.Request) (from, to *time.Time, err error) {
	parse := func(name string) (*time.Time, error) {
		v := r.URL.Query().Get(name)
		if v == "" {
			return nil, nil
		}
		d, err := calendar.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s date: %w", name, err)
		}
		return &d, nil
	}
	if from, err = parse("from"); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("from must not be after to")
	}
	return from, to, nil
}
