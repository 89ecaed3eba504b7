package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/proxy"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

type call struct {
	method, url string
	headers     map[string]string
	body        string
}

// recorder is a scripted stealth client.
type recorder struct {
	calls   []call
	replies []int
	err     error
}

func (r *recorder) do(method, rawURL string, headers map[string]string, body io.Reader) ([]byte, int, error) {
	c := call{method: method, url: rawURL, headers: headers}
	if body != nil {
		b, _ := io.ReadAll(body)
		c.body = string(b)
	}
	r.calls = append(r.calls, c)
	if r.err != nil {
		return nil, 0, r.err
	}
	status := http.StatusOK
	if i := len(r.calls) - 1; i < len(r.replies) {
		status = r.replies[i]
	}
	return []byte("body"), status, nil
}

func TestStealthGetHeadersAndCookies(t *testing.T) {
	rec := &recorder{}
	s := newStealth(rec.do, WithHeaders(map[string]string{"Referer": "https://www.youtube.com/"}))
	s.SetCookie("CONSENT", "YES+cb", ".youtube.com")
	s.SetCookie("OTHER", "x", "example.com")

	resp, err := s.Get(context.Background(), "https://www.youtube.com/watch?v=abc", nil)
	require.NoError(t, err)
	assert.Equal(t, "body", resp.Text())

	require.Len(t, rec.calls, 1)
	h := rec.calls[0].headers
	assert.Equal(t, "en-US", h["accept-language"])
	assert.Equal(t, "https://www.youtube.com/", h["referer"])
	assert.Equal(t, "CONSENT=YES+cb", h["cookie"])
	_, dup := h["Accept-Language"]
	assert.False(t, dup)
}

func TestStealthPost(t *testing.T) {
	rec := &recorder{}
	s := newStealth(rec.do)

	_, err := s.Post(context.Background(), "https://www.youtube.com/youtubei/v1/player?key=k", map[string]any{"videoId": "abc"}, nil)
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, http.MethodPost, rec.calls[0].method)
	assert.Equal(t, `{"videoId":"abc"}`, rec.calls[0].body)
	assert.Equal(t, "application/json", rec.calls[0].headers["content-type"])
	_, hasCookie := rec.calls[0].headers["cookie"]
	assert.False(t, hasCookie)
}

func TestStealthRetries(t *testing.T) {
	rec := &recorder{replies: []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusOK}}
	s := newStealth(rec.do, WithRetry(fastRetry))

	resp, err := s.Post(context.Background(), "https://www.youtube.com/", map[string]string{"a": "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, rec.calls, 3)
	assert.Equal(t, `{"a":"b"}`, rec.calls[2].body, "body must be replayed on retry")

	rec = &recorder{replies: []int{http.StatusTooManyRequests}}
	s = newStealth(rec.do, WithRetry(fastRetry))
	resp, err = s.Get(context.Background(), "https://www.youtube.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Len(t, rec.calls, 1)
}

func TestStealthErrors(t *testing.T) {
	rec := &recorder{err: errors.New("tls handshake")}
	s := newStealth(rec.do, WithRetry(fastRetry))
	_, err := s.Get(context.Background(), "https://www.youtube.com/", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tls handshake")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec = &recorder{}
	_, err = newStealth(rec.do).Get(ctx, "https://www.youtube.com/", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestStealthBudget(t *testing.T) {
	rec := &recorder{}
	assert.Equal(t, 0, newStealth(rec.do).RetriesWhenBlocked())
	assert.Equal(t, 10, newStealth(rec.do, WithBlockedRetries(10)).RetriesWhenBlocked())
	assert.Nil(t, newStealth(rec.do).Proxy())

	pool, err := proxy.NewWebsharePool(25, 4)
	require.NoError(t, err)
	s := newStealth(rec.do, WithProxy(pool))
	assert.Equal(t, 4, s.RetriesWhenBlocked())
	assert.Same(t, pool, s.Proxy())
	assert.Equal(t, 2, newStealth(rec.do, WithProxy(pool), WithBlockedRetries(2)).RetriesWhenBlocked())
}

func TestStealthBlockedThroughPool(t *testing.T) {
	var posts int
	do := func(method, rawURL string, _ map[string]string, _ io.Reader) ([]byte, int, error) {
		if method == http.MethodPost {
			posts++
			return []byte(`{"playabilityStatus":{"status":"LOGIN_REQUIRED","reason":"Sign in to confirm you’re not a bot"}}`), http.StatusOK, nil
		}
		return []byte(`<script>ytcfg.set({"INNERTUBE_API_KEY":"AIzaPool"})</script>`), http.StatusOK, nil
	}
	pool, err := proxy.NewWebsharePool(25, 3)
	require.NoError(t, err)

	_, err = transcript.NewListFetcher(newStealth(do, WithProxy(pool))).Fetch(context.Background(), "GJLlxj_dtq8")
	require.Error(t, err)
	assert.Equal(t, transcript.KindRequestBlocked, transcript.KindOf(err))
	assert.Equal(t, 3, posts)
	assert.Contains(t, err.Error(), "Webshare")
	assert.NotContains(t, err.Error(), "Use proxies")
}
