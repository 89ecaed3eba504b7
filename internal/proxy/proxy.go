// Package proxy describes the proxy setups a transport can route YouTube
// requests through. The set of variants is closed: a plain http/https URL
// pair, or Webshare rotating residential proxies (by credentials, or as a
// pool a client loads from the Webshare API).
package proxy

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Kind discriminates the proxy variants.
type Kind int

const (
	KindGeneric  Kind = iota + 1 // user-supplied http/https URL pair
	KindWebshare                 // Webshare rotating residential pool
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindWebshare:
		return "webshare"
	}
	return "unknown"
}

// Config is implemented by *Generic, *Webshare and *WebsharePool only.
type Config interface {
	Kind() Kind
	// URLs returns the proxy URLs for http and https targets.
	URLs() (httpURL, httpsURL string)
	// PreventKeepAlive reports whether every request should use a fresh
	// connection, so a rotating pool hands out a new exit IP each time.
	PreventKeepAlive() bool
	// RetriesWhenBlocked is the attempt budget for catalog fetches that
	// YouTube answers with a block.
	RetriesWhenBlocked() int

	isConfig()
}

// InvalidConfigError is returned by the constructors when a config cannot
// produce a usable proxy URL.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid proxy config: " + e.Reason
}

// Generic routes traffic through fixed proxy URLs.
type Generic struct {
	httpURL  string
	httpsURL string
}

// NewGeneric builds a Generic config. At least one URL is required; when
// only one is given it is used for both schemes.
func NewGeneric(httpURL, httpsURL string) (*Generic, error) {
	httpURL, httpsURL = strings.TrimSpace(httpURL), strings.TrimSpace(httpsURL)
	if httpURL == "" && httpsURL == "" {
		return nil, &InvalidConfigError{Reason: "a generic proxy needs at least one of the http or https URLs"}
	}
	for _, raw := range []string{httpURL, httpsURL} {
		if raw == "" {
			continue
		}
		if _, err := url.Parse(raw); err != nil {
			return nil, &InvalidConfigError{Reason: fmt.Sprintf("parse %q: %v", raw, err)}
		}
	}
	if httpURL == "" {
		httpURL = httpsURL
	}
	if httpsURL == "" {
		httpsURL = httpURL
	}
	return &Generic{httpURL: httpURL, httpsURL: httpsURL}, nil
}

func (g *Generic) Kind() Kind              { return KindGeneric }
func (g *Generic) URLs() (string, string)  { return g.httpURL, g.httpsURL }
func (g *Generic) PreventKeepAlive() bool  { return false }
func (g *Generic) RetriesWhenBlocked() int { return 0 }
func (g *Generic) isConfig()               {}

// Webshare defaults.
const (
	DefaultWebshareDomain  = "p.webshare.io"
	DefaultWebsharePort    = 80
	DefaultWebshareRetries = 10
)

// Webshare builds rotating residential proxy URLs. Only the "Residential"
// product rotates exit IPs per connection; "Proxy Server" and "Static
// Residential" plans get blocked like any other fixed IP.
type Webshare struct {
	username  string
	password  string
	locations []string
	domain    string
	port      int
	retries   int
}

// WebshareOption customizes a Webshare config.
type WebshareOption func(*Webshare)

// WithLocations restricts the pool to exit IPs in the given countries
// (ISO codes, e.g. "de", "us").
func WithLocations(codes ...string) WebshareOption {
	return func(w *Webshare) {
		for _, c := range codes {
			if c = strings.TrimSpace(c); c != "" {
				w.locations = append(w.locations, strings.ToUpper(c))
			}
		}
	}
}

// WithRetries overrides the blocked-request attempt budget.
func WithRetries(n int) WebshareOption {
	return func(w *Webshare) { w.retries = n }
}

// WithHost overrides the proxy endpoint.
func WithHost(domain string, port int) WebshareOption {
	return func(w *Webshare) {
		if domain != "" {
			w.domain = domain
		}
		if port > 0 {
			w.port = port
		}
	}
}

// NewWebshare builds a Webshare config from the proxy credentials shown in
// the Webshare dashboard.
func NewWebshare(username, password string, opts ...WebshareOption) (*Webshare, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, &InvalidConfigError{Reason: "webshare proxy username and password are required"}
	}
	w := &Webshare{
		username: username,
		password: password,
		domain:   DefaultWebshareDomain,
		port:     DefaultWebsharePort,
		retries:  DefaultWebshareRetries,
	}
	for _, o := range opts {
		o(w)
	}
	if w.retries < 0 {
		return nil, &InvalidConfigError{Reason: "retries must not be negative"}
	}
	return w, nil
}

// Username is the rotating username including location filters.
func (w *Webshare) Username() string {
	var sb strings.Builder
	sb.WriteString(w.username)
	for _, loc := range w.locations {
		sb.WriteByte('-')
		sb.WriteString(loc)
	}
	sb.WriteString("-rotate")
	return sb.String()
}

// URL returns the proxy URL used for both schemes.
func (w *Webshare) URL() string {
	u := url.URL{
		Scheme: "http",
		User:   url.UserPassword(w.Username(), w.password),
		Host:   net.JoinHostPort(w.domain, strconv.Itoa(w.port)),
		Path:   "/",
	}
	return u.String()
}

func (w *Webshare) Kind() Kind { return KindWebshare }

func (w *Webshare) URLs() (string, string) {
	u := w.URL()
	return u, u
}

func (w *Webshare) PreventKeepAlive() bool  { return true }
func (w *Webshare) RetriesWhenBlocked() int { return w.retries }
func (w *Webshare) isConfig()               {}

// WebsharePool describes Webshare proxies a client loads itself from the
// Webshare API (go-stealth proxypool). It has no URLs of its own; it tells
// the error messages and the retry budget which proxies are in use.
type WebsharePool struct {
	size    int
	retries int
}

// NewWebsharePool describes a pool of size proxies with the given
// blocked-request attempt budget.
func NewWebsharePool(size, retries int) (*WebsharePool, error) {
	if retries < 0 {
		return nil, &InvalidConfigError{Reason: "retries must not be negative"}
	}
	return &WebsharePool{size: size, retries: retries}, nil
}

// Size is the number of proxies the pool held when it was loaded.
func (p *WebsharePool) Size() int { return p.size }

func (p *WebsharePool) Kind() Kind              { return KindWebshare }
func (p *WebsharePool) URLs() (string, string)  { return "", "" }
func (p *WebsharePool) PreventKeepAlive() bool  { return true }
func (p *WebsharePool) RetriesWhenBlocked() int { return p.retries }
func (p *WebsharePool) isConfig()               {}
