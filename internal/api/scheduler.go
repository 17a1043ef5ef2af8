package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"investorportal/internal/utils"
)

// BenchmarkSyncer refreshes stored benchmark prices.
type BenchmarkSyncer interface {
	SyncAll(ctx context.Context) error
}

// Scheduler runs the benchmark sync on a cron schedule. Runs never overlap:
// a run that comes due while another is in progress is skipped. Every run,
// scheduled or triggered, is cancelled by Stop.
type Scheduler struct {
	cron    *cron.Cron
	syncer  BenchmarkSyncer
	logger  *utils.AppLogger
	baseCtx context.Context
	cancel  context.CancelFunc
	running sync.Mutex
	wg      sync.WaitGroup
}

func NewScheduler(syncer BenchmarkSyncer, logger *utils.AppLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		syncer:  syncer,
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Start schedules the sync with a six field cron spec (seconds first) and
// runs it once right away in the background. Cancelling ctx stops the
// scheduler's runs as Stop does.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunNow(s.baseCtx) }); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	context.AfterFunc(ctx, s.cancel)
	s.cron.Start()
	s.logger.Info("Benchmark sync scheduled: %s", spec)

	s.Trigger()
	return nil
}

// Trigger starts a sync in the background under the scheduler's context.
// It returns false once the scheduler has been stopped.
func (s *Scheduler) Trigger() bool {
	if s.baseCtx.Err() != nil {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunNow(s.baseCtx)
	}()
	return true
}

// RunNow syncs immediately unless a sync is already running. It reports
// whether a sync ran.
func (s *Scheduler) RunNow(ctx context.Context) bool {
	if !s.running.TryLock() {
		s.logger.Info("Benchmark sync already running, skipped")
		return false
	}
	defer s.running.Unlock()

	s.logger.Info("Benchmark sync running...")
	if err := s.syncer.SyncAll(ctx); err != nil {
		s.logger.Error("Benchmark sync failed: %v", err)
	} else {
		s.logger.Info("Benchmark sync completed successfully")
	}
	return true
}

// Stop cancels running syncs and waits for them and for scheduled jobs to
// finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("Benchmark sync stopped")
}
