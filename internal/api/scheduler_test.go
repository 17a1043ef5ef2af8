package api

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investorportal/internal/utils"
)

type fakeSyncer struct {
	calls   atomic.Int32
	release chan struct{}
	done    chan struct{}
	err     error
}

func (f *fakeSyncer) SyncAll(ctx context.Context) error {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
		}
	}
	if f.done != nil {
		f.done <- struct{}{}
	}
	return f.err
}

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	syncer := &fakeSyncer{release: make(chan struct{}), done: make(chan struct{}, 2)}
	s := NewScheduler(syncer, utils.NewDiscardLogger())

	go s.RunNow(context.Background())
	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	assert.False(t, s.RunNow(context.Background()))
	close(syncer.release)
	<-syncer.done

	assert.True(t, s.RunNow(context.Background()))
	assert.Equal(t, int32(2), syncer.calls.Load())
}

func TestSchedulerRunNowReportsFailure(t *testing.T) {
	syncer := &fakeSyncer{err: errors.New("1 of 1 benchmarks failed to sync")}
	s := NewScheduler(syncer, utils.NewDiscardLogger())
	assert.True(t, s.RunNow(context.Background()))
}

func TestSchedulerStartRunsImmediately(t *testing.T) {
	syncer := &fakeSyncer{done: make(chan struct{}, 1)}
	s := NewScheduler(syncer, utils.NewDiscardLogger())
	require.NoError(t, s.Start(context.Background(), "0 0 3 * * *"))
	defer s.Stop()

	select {
	case <-syncer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("initial sync did not run")
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&fakeSyncer{}, utils.NewDiscardLogger())
	assert.Error(t, s.Start(context.Background(), "every day"))
}

func TestSchedulerStopCancelsTriggeredRun(t *testing.T) {
	syncer := &fakeSyncer{release: make(chan struct{}), done: make(chan struct{}, 1)}
	s := NewScheduler(syncer, utils.NewDiscardLogger())

	require.True(t, s.Trigger())
	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the running sync")
	}
	assert.Len(t, syncer.done, 1)
	assert.False(t, s.Trigger())
}

func TestSchedulerFollowsStartContext(t *testing.T) {
	syncer := &fakeSyncer{release: make(chan struct{}), done: make(chan struct{}, 1)}
	s := NewScheduler(syncer, utils.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx, "0 0 3 * * *"))
	require.Eventually(t, func() bool { return syncer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-syncer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not cancelled with the start context")
	}
	s.Stop()
}
