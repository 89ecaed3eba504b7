package transcript

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/anatolykoptev/go_transcript/internal/proxy"
)

// Transport performs the HTTP calls the fetchers need. Implementations live
// in internal/transport. The cookie store is shared state: the consent
// handshake writes to it, so concurrent list fetches on one Transport must
// be serialized by the caller.
type Transport interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
	Post(ctx context.Context, url string, body any, headers map[string]string) (*Response, error)
	SetCookie(name, value, domain string)
	// RetriesWhenBlocked is the attempt budget for blocked catalog fetches.
	RetriesWhenBlocked() int
	// Proxy returns the active proxy config, or nil.
	Proxy() proxy.Config
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) Text() string { return string(r.Body) }

func (r *Response) JSON(v any) error { return json.Unmarshal(r.Body, v) }

// checkStatus maps HTTP failures onto the error taxonomy.
func checkStatus(videoID string, resp *Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &IPBlockedError{videoError: videoError{videoID}}
	case resp.StatusCode >= 400:
		return &RequestFailedError{
			videoError: videoError{videoID},
			StatusCode: resp.StatusCode,
			Reason:     http.StatusText(resp.StatusCode),
		}
	}
	return nil
}
