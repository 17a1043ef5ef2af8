package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"investorportal/internal/reporting"
	"investorportal/internal/utils"
)

// Version is reported by the health check.
const Version = "1.0.0"

// Server represents the API server instance
// It handles HTTP requests and serves account analytics
type Server struct {
	router    *mux.Router      // HTTP request router
	logger    *utils.AppLogger // Application logger
	config    *utils.Config    // Application configuration
	repo      Repository       // Accounts, valuations and benchmark prices
	reports   *reporting.ReportingHandler
	scheduler *Scheduler // nil when benchmark sync is off
	perf      *utils.PerformanceTracker
	validate  *validator.Validate
}

// NewServer creates and initializes a new API server instance
//
// Parameters:
//   - logger: Application logger for recording server activities
//   - config: Application configuration including server and benchmark settings
//   - repo: Storage for accounts, valuations and benchmark prices
//   - reports: Handler serving analytics reports
//   - scheduler: Benchmark sync schedule, nil to disable
//   - perf: Tracker exposed at /api/debug/performance
func NewServer(logger *utils.AppLogger, config *utils.Config, repo Repository, reports *reporting.ReportingHandler, scheduler *Scheduler, perf *utils.PerformanceTracker) *Server {
	server := &Server{
		router:    mux.NewRouter(),
		logger:    logger,
		config:    config,
		repo:      repo,
		reports:   reports,
		scheduler: scheduler,
		perf:      perf,
		validate:  validator.New(),
	}

	server.setupRouter()
	server.setupRoutes()
	server.verifyRoutes()
	return server
}

// setupRouter configures middleware for the server.
func (s *Server) setupRouter() {
	s.router.Use(s.requestID)
	s.router.Use(s.logRequests)
	s.router.Use(cors)
	s.router.HandleFunc("/health", s.healthCheck).Methods("GET")
}

// setupRoutes configures APIs for the server.
func (s *Server) setupRoutes() {
	s.logger.Debug("Setting up routes...")

	apiRouter := s.router.PathPrefix("/api").Subrouter()

	routes := []struct {
		path    string
		handler http.HandlerFunc
		methods []string
	}{
		{"/accounts", s.ListAccounts, []string{"GET"}},
		{"/accounts", s.CreateAccount, []string{"POST"}},
		{"/accounts/{id}", s.GetAccount, []string{"GET"}},
		{"/accounts/{id}", s.DeleteAccount, []string{"DELETE"}},
		{"/accounts/{id}/history", s.GetHistory, []string{"GET"}},
		{"/accounts/{id}/valuations", s.IngestValuations, []string{"POST"}},
		{"/benchmarks", s.ListBenchmarks, []string{"GET"}},
		{"/benchmarks/sync", s.SyncBenchmarks, []string{"POST"}},
		{"/benchmarks/{symbol}", s.GetBenchmark, []string{"GET"}},
		{"/debug/performance", s.GetPerformance, []string{"GET"}},
	}

	for _, route := range routes {
		apiRouter.HandleFunc(route.path, route.handler).Methods(route.methods...)
		s.logger.Debug("Registered route: %s /api%s", route.methods[0], route.path)
	}

	if s.reports != nil {
		s.reports.RegisterRoutes(apiRouter)
	}

	s.logger.Info("Routes setup completed")
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request by the server.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.WithFields(map[string]interface{}{"request_id": RequestID(r.Context())})
		logger.Debug("Request started: %s %s", r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Debug("Request completed: %s %s %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start))
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				s.perf.TrackOperation(r.Method+" "+tpl, time.Since(start))
			}
		}
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP and the benchmark schedule until ctx is done, then shuts
// both down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting API server on port %s", s.config.Server.Port)

	srv := &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting on http://localhost:%s", s.config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error: %v", err)
			errChan <- err
		}
	}()

	if s.scheduler != nil {
		if err := s.scheduler.Start(ctx, s.config.Benchmark.SyncSpec); err != nil {
			s.logger.Error("Benchmark sync not started: %v", err)
		} else {
			defer s.scheduler.Stop()
		}
	}

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received")
	}

	s.logger.Info("Shutting down server...")
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Server shutdown failed: %v", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

func (s *Server) verifyRoutes() {
	s.logger.Debug("Verifying registered routes:")
	s.router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, _ := route.GetPathTemplate()
		methods, _ := route.GetMethods()
		s.logger.Debug("Route: %s [%v]", pathTemplate, methods)
		return nil
	})
}

// Router exposes the handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}

// GetPerformance reports request and computation timings.
func (s *Server) GetPerformance(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"operations": s.perf.Stats(),
		"report":     s.perf.GenerateAggregateReport(),
	})
}
