package transcript

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/proxy"
)

// fakeTransport serves canned responses. Watch page and player replies are
// consumed in order; the last one repeats.
type fakeTransport struct {
	pages   []*Response
	players []*Response
	tracks  map[string]*Response

	retries int
	proxy   proxy.Config

	cookies  map[string]string
	gets     []string
	posts    []string
	postBody any
}

func newFake() *fakeTransport {
	return &fakeTransport{tracks: map[string]*Response{}, cookies: map[string]string{}}
}

func nth(rs []*Response, i int) *Response {
	if len(rs) == 0 {
		return &Response{StatusCode: http.StatusNotFound}
	}
	if i >= len(rs) {
		i = len(rs) - 1
	}
	return rs[i]
}

func (f *fakeTransport) Get(_ context.Context, url string, _ map[string]string) (*Response, error) {
	f.gets = append(f.gets, url)
	if strings.HasPrefix(url, "https://www.youtube.com/watch") {
		n := 0
		for _, g := range f.gets {
			if strings.HasPrefix(g, "https://www.youtube.com/watch") {
				n++
			}
		}
		return nth(f.pages, n-1), nil
	}
	if r, ok := f.tracks[url]; ok {
		return r, nil
	}
	return &Response{StatusCode: http.StatusNotFound}, nil
}

func (f *fakeTransport) Post(_ context.Context, url string, body any, _ map[string]string) (*Response, error) {
	f.posts = append(f.posts, url)
	f.postBody = body
	return nth(f.players, len(f.posts)-1), nil
}

func (f *fakeTransport) SetCookie(name, value, _ string) { f.cookies[name] = value }
func (f *fakeTransport) RetriesWhenBlocked() int         { return f.retries }
func (f *fakeTransport) Proxy() proxy.Config             { return f.proxy }

func ok(body string) *Response {
	return &Response{StatusCode: http.StatusOK, Body: []byte(body)}
}

func jsonResp(v any) *Response {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &Response{StatusCode: http.StatusOK, Body: b}
}

const (
	testVideoID = "GJLlxj_dtq8"
	watchPage   = `<html><script>var cfg = {"INNERTUBE_API_KEY": "AIzaTestKey_-1"};</script></html>`
	consentPage = `<html><form action="https://consent.youtube.com/s" method="POST">` +
		`<input type="hidden" name="gl" value="DE"><input type="hidden" name="v" value="cb.20210328-17-p0.de+FX+119">` +
		`</form></html>`
	captchaPage = `<html><div class="g-recaptcha" data-sitekey="x"></div></html>`
)

func track(code, name, kind string, translatable bool) map[string]any {
	t := map[string]any{
		"baseUrl":        "https://www.youtube.com/api/timedtext?v=" + testVideoID + "&lang=" + code + "&fmt=srv3",
		"name":           map[string]any{"runs": []any{map[string]any{"text": name}}},
		"languageCode":   code,
		"isTranslatable": translatable,
	}
	if kind != "" {
		t["kind"] = kind
	}
	return t
}

func playerJSON(tracks ...map[string]any) map[string]any {
	return map[string]any{
		"playabilityStatus": map[string]any{"status": "OK"},
		"captions": map[string]any{
			"playerCaptionsTracklistRenderer": map[string]any{
				"captionTracks": tracks,
				"translationLanguages": []any{
					map[string]any{"languageCode": "fr", "languageName": map[string]any{"simpleText": "French"}},
					map[string]any{"languageCode": "ja", "languageName": map[string]any{"runs": []any{map[string]any{"text": "Japanese"}}}},
				},
			},
		},
	}
}

func unplayableJSON(status, reason string) map[string]any {
	return map[string]any{"playabilityStatus": map[string]any{"status": status, "reason": reason}}
}

func trackURL(code string) string {
	return "https://www.youtube.com/api/timedtext?v=" + testVideoID + "&lang=" + code
}
