// Package transport implements transcript.Transport over net/http and over
// the go-stealth Chrome-fingerprinted client.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxBody caps a response body. Watch pages run around 1.5 MB.
	DefaultMaxBody = 8 << 20

	acceptLanguage = "en-US"
)

// defaultHeaders are sent with every request. Accept-Language pins the
// consent wall and error phrases to English, which the playability rules
// match on.
func defaultHeaders() map[string]string {
	return map[string]string{
		"Accept-Language": acceptLanguage,
		"User-Agent":      stealth.RandomUserAgent(),
	}
}

// merge returns base overlaid with extra. Neither map is modified.
func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}

func encodeJSON(body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return b, nil
}

// newLimiter returns nil for rps <= 0, which disables pacing.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return ctx.Err()
	}
	return l.Wait(ctx)
}
