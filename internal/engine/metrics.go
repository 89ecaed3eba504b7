package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// metrics tracks operational counters across the engine.
var metrics struct {
	ListRequests   atomic.Int64
	FetchRequests  atomic.Int64
	FetchErrors    atomic.Int64
	Blocked        atomic.Int64
	BlockedRetries atomic.Int64
}

var metricKeys = []string{
	"list_requests", "fetch_requests", "fetch_errors",
	"blocked", "blocked_retries",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"list_requests":   metrics.ListRequests.Load(),
		"fetch_requests":  metrics.FetchRequests.Load(),
		"fetch_errors":    metrics.FetchErrors.Load(),
		"blocked":         metrics.Blocked.Load(),
		"blocked_retries": metrics.BlockedRetries.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

func IncrListRequests()  { metrics.ListRequests.Add(1) }
func IncrFetchRequests() { metrics.FetchRequests.Add(1) }
func IncrFetchErrors()   { metrics.FetchErrors.Add(1) }
func IncrBlocked()       { metrics.Blocked.Add(1) }
func IncrRetries()       { metrics.BlockedRetries.Add(1) }

// slowThreshold is when TrackOperation starts complaining.
const slowThreshold = 5 * time.Second

// TrackOperation logs a warning if an operation takes longer than slowThreshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > slowThreshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
