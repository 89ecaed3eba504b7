package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_transcript/internal/proxy"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// HTTP is a net/http transport with a cookie jar, optional proxy routing
// and request pacing.
type HTTP struct {
	client     *http.Client
	jar        *cookiejar.Jar
	proxy      proxy.Config
	limiter    *rate.Limiter
	retry      RetryConfig
	headers    map[string]string
	maxBody    int64
	closeConns bool
	retries    int
}

var _ transcript.Transport = (*HTTP)(nil)

// NewHTTP builds an HTTP transport. It fails only when the proxy config
// carries an unparsable URL.
func NewHTTP(opts ...Option) (*HTTP, error) {
	o := newOptions(opts)

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	rt := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     60 * time.Second,
	}
	t := &HTTP{
		jar:     jar,
		proxy:   o.proxy,
		limiter: newLimiter(o.rps),
		retry:   o.retry,
		headers: merge(defaultHeaders(), o.headers),
		maxBody: o.maxBody,
		retries: o.retriesWhenBlocked(),
	}
	if o.proxy != nil {
		fn, err := proxyFunc(o.proxy)
		if err != nil {
			return nil, err
		}
		rt.Proxy = fn
		// rotating pools hand out a new exit IP per connection
		if o.proxy.PreventKeepAlive() {
			rt.DisableKeepAlives = true
			t.closeConns = true
		}
	}
	t.client = &http.Client{Timeout: o.timeout, Transport: rt, Jar: jar}
	return t, nil
}

// proxyFunc picks the proxy URL by target scheme.
func proxyFunc(cfg proxy.Config) (func(*http.Request) (*url.URL, error), error) {
	rawHTTP, rawHTTPS := cfg.URLs()
	if rawHTTP == "" && rawHTTPS == "" {
		return nil, &proxy.InvalidConfigError{Reason: cfg.Kind().String() + " proxy config has no URLs to route through"}
	}
	httpURL, err := url.Parse(rawHTTP)
	if err != nil {
		return nil, &proxy.InvalidConfigError{Reason: fmt.Sprintf("http proxy url: %v", err)}
	}
	httpsURL, err := url.Parse(rawHTTPS)
	if err != nil {
		return nil, &proxy.InvalidConfigError{Reason: fmt.Sprintf("https proxy url: %v", err)}
	}
	return func(r *http.Request) (*url.URL, error) {
		if r.URL.Scheme == "https" {
			return httpsURL, nil
		}
		return httpURL, nil
	}, nil
}

func (t *HTTP) Get(ctx context.Context, rawURL string, headers map[string]string) (*transcript.Response, error) {
	return t.do(ctx, http.MethodGet, rawURL, nil, headers)
}

// Post sends body as JSON.
func (t *HTTP) Post(ctx context.Context, rawURL string, body any, headers map[string]string) (*transcript.Response, error) {
	b, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return t.do(ctx, http.MethodPost, rawURL, b, merge(map[string]string{"Content-Type": "application/json"}, headers))
}

// SetCookie stores a cookie for domain and its subdomains.
func (t *HTTP) SetCookie(name, value, domain string) {
	host := strings.TrimPrefix(domain, ".")
	t.jar.SetCookies(&url.URL{Scheme: "https", Host: host, Path: "/"}, []*http.Cookie{{
		Name:   name,
		Value:  value,
		Domain: domain,
		Path:   "/",
	}})
}

func (t *HTTP) RetriesWhenBlocked() int { return t.retries }

func (t *HTTP) Proxy() proxy.Config { return t.proxy }

func (t *HTTP) do(ctx context.Context, method, rawURL string, body []byte, headers map[string]string) (*transcript.Response, error) {
	if err := wait(ctx, t.limiter); err != nil {
		return nil, err
	}
	hdr := merge(t.headers, headers)

	resp, err := retryDo(ctx, t.retry, func() (*transcript.Response, error) {
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
		if err != nil {
			return nil, err
		}
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		req.Close = t.closeConns

		res, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, t.maxBody))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if isRetryableStatus(res.StatusCode) {
			return nil, &statusError{StatusCode: res.StatusCode, body: data}
		}
		return &transcript.Response{StatusCode: res.StatusCode, Body: data}, nil
	})

	// an upstream that stays unhealthy is reported as a response, so the
	// caller maps it onto its own error taxonomy
	var se *statusError
	if errors.As(err, &se) {
		return &transcript.Response{StatusCode: se.StatusCode, Body: se.body}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("http %s: %w", strings.ToLower(method), err)
	}
	return resp, nil
}
