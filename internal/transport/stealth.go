package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_transcript/internal/proxy"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// doFunc is the request primitive of the stealth client.
type doFunc func(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error)

type cookie struct {
	value  string
	domain string
}

// Stealth sends requests through a go-stealth BrowserClient, which presents
// a Chrome TLS fingerprint and may rotate through a proxy pool. Cookies are
// kept here and sent as a header.
type Stealth struct {
	do      doFunc
	limiter *rate.Limiter
	retry   RetryConfig
	headers map[string]string
	retries int
	proxy   proxy.Config

	mu      sync.Mutex
	cookies map[string]cookie
}

var _ transcript.Transport = (*Stealth)(nil)

// NewStealth wraps bc. Configure routing with stealth.WithProxyPool and
// stealth.WithTimeout on the client; WithTimeout is ignored here and WithProxy
// only describes the pool (see proxy.NewWebsharePool).
func NewStealth(bc *stealth.BrowserClient, opts ...Option) *Stealth {
	return newStealth(func(method, rawURL string, headers map[string]string, body io.Reader) ([]byte, int, error) {
		data, _, status, err := bc.Do(method, rawURL, headers, body)
		return data, status, err
	}, opts...)
}

func newStealth(do doFunc, opts ...Option) *Stealth {
	o := newOptions(opts)
	base := merge(stealth.ChromeHeaders(), map[string]string{"accept-language": acceptLanguage})
	return &Stealth{
		do:      do,
		limiter: newLimiter(o.rps),
		retry:   o.retry,
		headers: merge(base, lowerKeys(o.headers)),
		retries: o.retriesWhenBlocked(),
		proxy:   o.proxy,
		cookies: make(map[string]cookie),
	}
}

func (s *Stealth) Get(ctx context.Context, rawURL string, headers map[string]string) (*transcript.Response, error) {
	return s.send(ctx, http.MethodGet, rawURL, nil, headers)
}

func (s *Stealth) Post(ctx context.Context, rawURL string, body any, headers map[string]string) (*transcript.Response, error) {
	b, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return s.send(ctx, http.MethodPost, rawURL, b, merge(map[string]string{"content-type": "application/json"}, headers))
}

func (s *Stealth) SetCookie(name, value, domain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies[name] = cookie{value: value, domain: strings.TrimPrefix(domain, ".")}
}

func (s *Stealth) RetriesWhenBlocked() int { return s.retries }

// Proxy is the pool description given with WithProxy, or nil.
func (s *Stealth) Proxy() proxy.Config { return s.proxy }

// cookieHeader renders the cookies whose domain matches the URL host.
func (s *Stealth) cookieHeader(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()

	s.mu.Lock()
	defer s.mu.Unlock()
	var pairs []string
	for name, c := range s.cookies {
		if host == c.domain || strings.HasSuffix(host, "."+c.domain) {
			pairs = append(pairs, name+"="+c.value)
		}
	}
	slices.Sort(pairs)
	return strings.Join(pairs, "; ")
}

// send honors ctx between attempts only: the stealth client has no
// per-request context.
func (s *Stealth) send(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (*transcript.Response, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return nil, err
	}
	hdr := merge(s.headers, lowerKeys(headers))
	if c := s.cookieHeader(rawURL); c != "" {
		hdr["cookie"] = c
	}

	resp, err := retryDo(ctx, s.retry, func() (*transcript.Response, error) {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		data, status, err := s.do(method, rawURL, hdr, rd)
		if err != nil {
			return nil, err
		}
		if isRetryableStatus(status) {
			return nil, &statusError{StatusCode: status, body: data}
		}
		return &transcript.Response{StatusCode: status, Body: data}, nil
	})

	var se *statusError
	if errors.As(err, &se) {
		return &transcript.Response{StatusCode: se.StatusCode, Body: se.body}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stealth %s: %w", strings.ToLower(method), err)
	}
	return resp, nil
}

// lowerKeys matches the header spelling of stealth.ChromeHeaders, so an
// override replaces the default instead of duplicating it.
func lowerKeys(h map[string]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[strings.ToLower(k)] = v
	}
	return out
}
