package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const (
	innertubeURLFormat = "https://www.youtube.com/youtubei/v1/player?key=%s"
	consentMarker      = `action="https://consent.youtube.com/s"`
	captchaMarker      = `class="g-recaptcha"`
	consentCookie      = "CONSENT"
	cookieDomain       = ".youtube.com"
)

// innertubeContext identifies the client on the player endpoint. The
// ANDROID client still returns caption tracks without a PO token for most
// videos.
var innertubeContext = map[string]any{
	"client": map[string]any{
		"clientName":    "ANDROID",
		"clientVersion": "20.10.38",
	},
}

var apiKeyRe = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)

// playerResponse is the subset of the player endpoint answer we read.
type playerResponse struct {
	PlayabilityStatus *PlayabilityStatus `json:"playabilityStatus"`
	Captions          *struct {
		PlayerCaptionsTracklistRenderer *captionsRenderer `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

// ListFetcher resolves a video id into its caption catalog:
// watch page → consent → API key → player endpoint → playability → catalog.
type ListFetcher struct {
	tr      Transport
	onRetry func(videoID string, attempt int)
}

// ListFetcherOption configures a ListFetcher.
type ListFetcherOption func(*ListFetcher)

// OnBlockedRetry registers fn to run before each retry of a blocked fetch.
func OnBlockedRetry(fn func(videoID string, attempt int)) ListFetcherOption {
	return func(f *ListFetcher) { f.onRetry = fn }
}

func NewListFetcher(tr Transport, opts ...ListFetcherOption) *ListFetcher {
	f := &ListFetcher{tr: tr}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch returns the caption catalog of videoID. Blocked requests are
// retried from the top while the transport's retry budget lasts; the final
// blocked error carries the proxy context. All other failures return at once.
func (f *ListFetcher) Fetch(ctx context.Context, videoID string) (*TranscriptList, error) {
	budget := f.tr.RetriesWhenBlocked()
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		captions, err := f.fetchCaptions(ctx, videoID)
		if err == nil {
			return newTranscriptList(f.tr, videoID, captions), nil
		}

		var blocked Blocked
		if !errors.As(err, &blocked) {
			return nil, err
		}
		if attempt+1 < budget {
			slog.Warn("transcript: request blocked, retrying",
				slog.String("video_id", videoID),
				slog.Int("attempt", attempt+1),
				slog.Int("budget", budget),
				slog.String("kind", blocked.Kind().String()))
			if f.onRetry != nil {
				f.onRetry(videoID, attempt+1)
			}
			continue
		}
		return nil, blocked.WithProxy(f.tr.Proxy())
	}
}

func (f *ListFetcher) fetchCaptions(ctx context.Context, videoID string) (*captionsRenderer, error) {
	page, err := f.fetchVideoHTML(ctx, videoID)
	if err != nil {
		return nil, err
	}
	apiKey, err := extractAPIKey(page, videoID)
	if err != nil {
		return nil, err
	}
	player, err := f.fetchPlayer(ctx, videoID, apiKey)
	if err != nil {
		return nil, err
	}
	return extractCaptions(player, videoID)
}

// fetchVideoHTML loads the watch page, accepting the consent wall once.
func (f *ListFetcher) fetchVideoHTML(ctx context.Context, videoID string) (string, error) {
	page, err := f.fetchHTML(ctx, videoID)
	if err != nil {
		return "", err
	}
	if !strings.Contains(page, consentMarker) {
		return page, nil
	}

	slog.Debug("transcript: consent wall, setting cookie", slog.String("video_id", videoID))
	if err := f.createConsentCookie(page, videoID); err != nil {
		return "", err
	}
	page, err = f.fetchHTML(ctx, videoID)
	if err != nil {
		return "", err
	}
	if strings.Contains(page, consentMarker) {
		return "", &ConsentCookieError{videoError{videoID}}
	}
	return page, nil
}

func (f *ListFetcher) fetchHTML(ctx context.Context, videoID string) (string, error) {
	resp, err := f.tr.Get(ctx, WatchURL(videoID), nil)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	if err := checkStatus(videoID, resp); err != nil {
		return "", err
	}
	return html.UnescapeString(resp.Text()), nil
}

func (f *ListFetcher) createConsentCookie(page, videoID string) error {
	v := consentToken(page)
	if v == "" {
		return &ConsentCookieError{videoError{videoID}}
	}
	f.tr.SetCookie(consentCookie, "YES+"+v, cookieDomain)
	return nil
}

// consentToken finds the hidden <input name="v"> of the consent form.
func consentToken(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}
	var walk func(n *html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "input" && getAttr(n, "name") == "v" {
			return getAttr(n, "value")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if v := walk(c); v != "" {
				return v
			}
		}
		return ""
	}
	return walk(doc)
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractAPIKey(page, videoID string) (string, error) {
	if m := apiKeyRe.FindStringSubmatch(page); len(m) == 2 {
		return m[1], nil
	}
	if strings.Contains(page, captchaMarker) {
		return "", &IPBlockedError{videoError: videoError{videoID}}
	}
	return "", &DataUnparsableError{videoError{videoID}}
}

func (f *ListFetcher) fetchPlayer(ctx context.Context, videoID, apiKey string) (*playerResponse, error) {
	resp, err := f.tr.Post(ctx, fmt.Sprintf(innertubeURLFormat, apiKey), map[string]any{
		"context": innertubeContext,
		"videoId": videoID,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("innertube player: %w", err)
	}
	if err := checkStatus(videoID, resp); err != nil {
		return nil, err
	}
	var player playerResponse
	if err := resp.JSON(&player); err != nil {
		slog.Debug("transcript: player response not JSON", slog.String("video_id", videoID), slog.Any("error", err))
		return nil, &DataUnparsableError{videoError{videoID}}
	}
	return &player, nil
}

func extractCaptions(player *playerResponse, videoID string) (*captionsRenderer, error) {
	if err := CheckPlayability(videoID, player.PlayabilityStatus); err != nil {
		return nil, err
	}
	if player.Captions == nil || player.Captions.PlayerCaptionsTracklistRenderer == nil ||
		len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, &TranscriptsDisabledError{videoError{videoID}}
	}
	return player.Captions.PlayerCaptionsTracklistRenderer, nil
}
