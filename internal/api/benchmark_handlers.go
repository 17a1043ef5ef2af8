package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// ListBenchmarks returns the indices kept in sync
func (s *Server) ListBenchmarks(w http.ResponseWriter, r *http.Request) {
	symbols := s.config.Benchmark.Symbols
	if symbols == nil {
		symbols = []string{}
	}
	s.respondWithJSON(w, http.StatusOK, BenchmarkListResponse{
		Symbols: symbols,
		Default: s.config.Benchmark.Default,
		Source:  s.config.Benchmark.Source,
	})
}

// GetBenchmark returns the stored levels of one index.
//
// Query Parameters:
//   - from (optional): first date, YYYY-MM-DD
//   - to (optional): last date, YYYY-MM-DD
func (s *Server) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["symbol"]))
	if symbol == "" {
		s.respondWithError(w, http.StatusBadRequest, "Invalid symbol")
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	prices, err := s.repo.Benchmark(r.Context(), symbol, from, to)
	if err != nil {
		s.logger.Error("Failed to load benchmark %s: %v", symbol, err)
		s.respondWithError(w, http.StatusInternalServerError, "Failed to fetch benchmark")
		return
	}
	if len(prices) == 0 {
		s.respondWithError(w, http.StatusNotFound, "No prices for "+symbol)
		return
	}
	s.respondWithJSON(w, http.StatusOK, BenchmarkResponse{Symbol: symbol, Prices: prices})
}

// SyncBenchmarks starts a benchmark sync in the background.
func (s *Server) SyncBenchmarks(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "Benchmark sync is not configured")
		return
	}
	if !s.scheduler.Trigger() {
		s.respondWithError(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}
	s.respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Benchmark sync started"})
}
