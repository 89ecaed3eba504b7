package transport

import (
	"time"

	"github.com/anatolykoptev/go_transcript/internal/proxy"
)

type options struct {
	proxy          proxy.Config
	timeout        time.Duration
	rps            float64
	retry          RetryConfig
	headers        map[string]string
	maxBody        int64
	blockedRetries int // < 0: take the budget from the proxy config
}

func newOptions(opts []Option) options {
	o := options{
		timeout:        15 * time.Second,
		retry:          DefaultRetryConfig,
		maxBody:        DefaultMaxBody,
		blockedRetries: -1,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Option configures a transport.
type Option func(*options)

// WithProxy routes HTTP requests through cfg. The stealth client takes its
// pool at construction, so there cfg only describes that pool: it sets the
// blocked retry budget and what Proxy reports.
func WithProxy(cfg proxy.Config) Option {
	return func(o *options) { o.proxy = cfg }
}

// WithTimeout bounds a single request. HTTP only.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRateLimit paces requests to rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

// WithRetry sets the policy for transient network failures.
func WithRetry(rc RetryConfig) Option {
	return func(o *options) { o.retry = rc }
}

// WithHeaders adds headers to every request, overriding the defaults.
func WithHeaders(h map[string]string) Option {
	return func(o *options) { o.headers = merge(o.headers, h) }
}

// WithMaxBody caps how much of a response body is read.
func WithMaxBody(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// WithBlockedRetries overrides the attempt budget for blocked catalog
// fetches, which otherwise comes from the proxy config.
func WithBlockedRetries(n int) Option {
	return func(o *options) { o.blockedRetries = n }
}

func (o options) retriesWhenBlocked() int {
	switch {
	case o.blockedRetries >= 0:
		return o.blockedRetries
	case o.proxy != nil:
		return o.proxy.RetriesWhenBlocked()
	}
	return 0
}
