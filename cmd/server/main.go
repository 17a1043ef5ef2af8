package main

import (
	"context"
	"log"
	"time"

	"investorportal/internal/api"
	"investorportal/internal/benchmark"
	"investorportal/internal/cache"
	"investorportal/internal/migrations"
	"investorportal/internal/reporting"
	"investorportal/internal/store"
	"investorportal/internal/utils"
	"investorportal/scraper"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewAppLoggerFromConfig(config.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	perf := utils.NewPerformanceTracker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := store.Open(ctx, config.Database.DSN)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migrations.RunMigrations(db, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	repo := store.NewPostgres(db)

	reportCache := openCache(config.Cache, logger)

	var scheduler *api.Scheduler
	source, closeSource := benchmarkSource(config, logger, perf)
	if closeSource != nil {
		defer closeSource()
	}
	if source != nil {
		syncer := benchmark.NewSyncer(source, repo, config.Benchmark.Symbols, config.Benchmark.BackfillYears, logger, perf)
		scheduler = api.NewScheduler(syncer, logger)
	}

	service := reporting.NewAnalyticsService(repo, repo, reporting.ServiceConfig{
		Cache:            reportCache,
		CacheTTL:         config.Cache.TTL,
		DefaultBenchmark: config.Benchmark.Default,
	}, logger, perf)
	reports := reporting.NewReportingHandler(service, logger)

	server := api.NewServer(logger, config, repo, reports, scheduler, perf)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// openCache falls back to the in-process cache when redis is unreachable.
func openCache(cfg utils.CacheConfig, logger *utils.AppLogger) cache.Store {
	c, err := cache.New(cache.Options{Driver: cfg.Driver, Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err != nil {
		logger.Error("Report cache unavailable, using memory: %v", err)
		return cache.NewMemoryStore()
	}
	if r, ok := c.(*cache.RedisStore); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			logger.Error("Redis at %s unreachable, using memory cache: %v", cfg.Addr, err)
			r.Close()
			return cache.NewMemoryStore()
		}
		logger.Info("Report cache: redis at %s", cfg.Addr)
	}
	return c
}

func benchmarkSource(config *utils.Config, logger *utils.AppLogger, perf *utils.PerformanceTracker) (benchmark.Source, func()) {
	switch config.Benchmark.Source {
	case "api":
		client := benchmark.NewClient(config.Benchmark.BaseURL, config.Benchmark.APIKey,
			benchmark.WithLogger(logger),
			benchmark.WithRateLimit(config.Benchmark.RateLimit),
		)
		return client, nil
	case "scrape":
		s := scraper.NewScraper(context.Background(), logger, config.Scraper, perf)
		if err := s.PreflightCheck(); err != nil {
			logger.Error("Scraper preflight failed, benchmark sync disabled: %v", err)
			s.Close()
			return nil, nil
		}
		return s, s.Close
	default:
		logger.Info("Benchmark sync disabled")
		return nil, nil
	}
}
