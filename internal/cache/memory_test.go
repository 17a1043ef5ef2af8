package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	value := []byte(`{"records":[]}`)
	require.NoError(t, s.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"records":[]}`, string(got))

	got[0] = 'y'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, `{"records":[]}`, string(again))

	require.NoError(t, s.Delete(ctx, "k"))
	_, found, _ = s.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "short", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(30 * time.Second)
	_, found, _ := s.Get(ctx, "short")
	assert.True(t, found)

	now = now.Add(time.Minute)
	_, found, _ = s.Get(ctx, "short")
	assert.False(t, found)
	_, found, _ = s.Get(ctx, "forever")
	assert.True(t, found)
	assert.Equal(t, 1, s.Len())
}

func TestNew(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(Options{Driver: DriverRedis, Addr: "localhost:6379"})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.(*RedisStore).Close())

	_, err = New(Options{Driver: DriverRedis})
	assert.Error(t, err)
	_, err = New(Options{Driver: "memcached"})
	assert.Error(t, err)
}

func TestReportKey(t *testing.T) {
	k := ReportKey{AccountID: 7, Benchmark: "SPX", HistoryStamp: "12@1704153600"}
	assert.Equal(t, "portal:report:7:SPX:-:-:-:12@1704153600:-", k.String())

	changed := k
	changed.HistoryStamp = "13@1704240000"
	assert.NotEqual(t, k.String(), changed.String())
}

func TestMemoryStoreEvictsSupersededReports(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	key := ReportKey{AccountID: 1, Benchmark: "SPX"}
	for i := 0; i < 1000; i++ {
		key.HistoryStamp = fmt.Sprintf("%d@%d", i+1, now.Unix())
		require.NoError(t, s.Set(ctx, key.String(), []byte(`{}`), 10*time.Minute))
		now = now.Add(time.Hour)
	}
	assert.Equal(t, 1, s.Len())

	_, found, err := s.Get(ctx, key.String())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreSweepKeepsLiveEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "old", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "pinned", []byte("2"), 0))
	require.NoError(t, s.Set(ctx, "live", []byte("3"), time.Hour))

	now = now.Add(2 * time.Minute)
	require.NoError(t, s.Set(ctx, "new", []byte("4"), time.Hour))
	assert.Equal(t, 3, s.Len())

	for _, k := range []string{"pinned", "live", "new"} {
		_, found, _ := s.Get(ctx, k)
		assert.True(t, found, k)
	}
}
