package utils

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type PerformanceTracker struct {
	metrics map[string][]time.Duration
	mu      sync.Mutex
}

// OperationStats summarizes the timings recorded for one operation.
type OperationStats struct {
	Operation string        `json:"operation"`
	Count     int           `json:"count"`
	Average   time.Duration `json:"average_ns"`
	Max       time.Duration `json:"max_ns"`
	Total     time.Duration `json:"total_ns"`
}

func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{
		metrics: make(map[string][]time.Duration),
	}
}

func (pt *PerformanceTracker) TrackOperation(operation string, duration time.Duration) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.metrics == nil {
		pt.metrics = make(map[string][]time.Duration)
	}
	pt.metrics[operation] = append(pt.metrics[operation], duration)
}

// Track records the time elapsed since start. Use it with defer:
//
//	defer tracker.Track("load_history", time.Now())
func (pt *PerformanceTracker) Track(operation string, start time.Time) {
	pt.TrackOperation(operation, time.Since(start))
}

// Stats returns per operation statistics ordered by operation name.
func (pt *PerformanceTracker) Stats() []OperationStats {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	stats := make([]OperationStats, 0, len(pt.metrics))
	for op, durations := range pt.metrics {
		s := OperationStats{Operation: op, Count: len(durations)}
		for _, d := range durations {
			s.Total += d
			s.Max = max(s.Max, d)
		}
		if s.Count > 0 {
			s.Average = s.Total / time.Duration(s.Count)
		}
		stats = append(stats, s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Operation < stats[j].Operation })
	return stats
}

func (pt *PerformanceTracker) GenerateAggregateReport() string {
	var report strings.Builder
	report.WriteString("Performance Report:\n")

	for _, s := range pt.Stats() {
		fmt.Fprintf(&report, "%s:\n", s.Operation)
		fmt.Fprintf(&report, "  Count: %d\n", s.Count)
		fmt.Fprintf(&report, "  Average: %v\n", s.Average)
		fmt.Fprintf(&report, "  Max: %v\n", s.Max)
		fmt.Fprintf(&report, "  Total: %v\n", s.Total)
	}

	return report.String()
}
