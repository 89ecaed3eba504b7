package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/formatter"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// DefaultLanguages is used when neither the caller nor the config names any.
var DefaultLanguages = []string{"en"}

// API is the high-level entry point: list a video's captions, fetch one
// track, or get its plain text.
type API struct {
	lister    *transcript.ListFetcher
	languages []string
	timeout   time.Duration
}

// APIOption configures an API.
type APIOption func(*API)

// WithLanguages sets the fallback language preference.
func WithLanguages(codes ...string) APIOption {
	return func(a *API) {
		if len(codes) > 0 {
			a.languages = codes
		}
	}
}

// WithFetchTimeout bounds every call. Zero means no bound.
func WithFetchTimeout(d time.Duration) APIOption {
	return func(a *API) { a.timeout = d }
}

func NewAPI(tr transcript.Transport, opts ...APIOption) *API {
	a := &API{languages: DefaultLanguages}
	for _, o := range opts {
		o(a)
	}
	a.lister = transcript.NewListFetcher(tr, transcript.OnBlockedRetry(func(string, int) { IncrRetries() }))
	return a
}

// NewAPIFromConfig builds an API from the injected engine config.
func NewAPIFromConfig(c *Config) *API {
	return NewAPI(c.Transport, WithLanguages(c.Languages...), WithFetchTimeout(c.FetchTimeout))
}

// List returns the caption catalog of videoID.
func (a *API) List(ctx context.Context, videoID string) (*transcript.TranscriptList, error) {
	IncrListRequests()
	ctx, cancel := a.bound(ctx)
	defer cancel()

	var list *transcript.TranscriptList
	err := TrackOperation(ctx, "list", func(ctx context.Context) error {
		var err error
		list, err = a.lister.Fetch(ctx, videoID)
		return err
	})
	if err != nil {
		a.failed("list", videoID, err)
		return nil, err
	}
	return list, nil
}

// Fetch retrieves the first available track in languages, manual tracks
// first.
func (a *API) Fetch(ctx context.Context, videoID string, languages []string, preserveFormatting bool) (*transcript.FetchedTranscript, error) {
	return a.FetchTranslated(ctx, videoID, languages, "", preserveFormatting)
}

// FetchTranslated is Fetch with the found track machine-translated into
// translateTo. An empty translateTo fetches the original.
func (a *API) FetchTranslated(ctx context.Context, videoID string, languages []string, translateTo string, preserveFormatting bool) (*transcript.FetchedTranscript, error) {
	IncrFetchRequests()
	ctx, cancel := a.bound(ctx)
	defer cancel()

	var fetched *transcript.FetchedTranscript
	err := TrackOperation(ctx, "fetch", func(ctx context.Context) error {
		list, err := a.lister.Fetch(ctx, videoID)
		if err != nil {
			return err
		}
		tr, err := list.FindTranscript(a.langs(languages))
		if err != nil {
			return err
		}
		if translateTo != "" {
			if tr, err = tr.Translate(translateTo); err != nil {
				return err
			}
		}
		fetched, err = tr.Fetch(ctx, preserveFormatting)
		return err
	})
	if err != nil {
		a.failed("fetch", videoID, err)
		return nil, err
	}
	return fetched, nil
}

// Text fetches a track and renders it as plain text. The fetched transcript
// is returned too, for its language metadata.
func (a *API) Text(ctx context.Context, videoID string, languages []string) (string, *transcript.FetchedTranscript, error) {
	fetched, err := a.Fetch(ctx, videoID, languages, false)
	if err != nil {
		return "", nil, err
	}
	text, err := formatter.Text{}.FormatTranscript(fetched)
	if err != nil {
		return "", nil, err
	}
	return text, fetched, nil
}

func (a *API) langs(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return a.languages
}

func (a *API) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *API) failed(op, videoID string, err error) {
	IncrFetchErrors()
	if transcript.IsBlocked(err) {
		IncrBlocked()
	}
	slog.Debug("engine: "+op+" failed",
		slog.String("video_id", videoID),
		slog.String("kind", transcript.KindOf(err).String()),
		slog.Any("error", err))
}
