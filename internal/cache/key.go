package cache

import (
	"strconv"
	"strings"
)

// KeyPrefix namespaces every report entry.
const KeyPrefix = "portal:report"

// ReportKey identifies one rendered report. The stamps change whenever the
// stored history or benchmark changes, so stale entries are never read and
// simply expire.
type ReportKey struct {
	AccountID      int
	Benchmark      string
	Inception      string
	From           string
	To             string
	HistoryStamp   string
	BenchmarkStamp string
}

func (k ReportKey) String() string {
	parts := []string{
		KeyPrefix,
		strconv.Itoa(k.AccountID),
		k.Benchmark,
		k.Inception,
		k.From,
		k.To,
		k.HistoryStamp,
		k.BenchmarkStamp,
	}
	for i, p := range parts {
		if p == "" {
			parts[i] = "-"
		}
	}
	return strings.Join(parts, ":")
}
