// Package formatter renders fetched transcripts as JSON, plain text, SRT
// or WebVTT.
package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// Formatter renders one or many fetched transcripts.
type Formatter interface {
	FormatTranscript(t *transcript.FetchedTranscript) (string, error)
	FormatTranscripts(ts []*transcript.FetchedTranscript) (string, error)
}

// Kind names an output format.
type Kind string

const (
	KindJSON       Kind = "json"
	KindPrettyJSON Kind = "pretty"
	KindText       Kind = "text"
	KindSRT        Kind = "srt"
	KindWebVTT     Kind = "webvtt"
)

// Kinds lists the supported formats in display order.
var Kinds = []Kind{KindJSON, KindPrettyJSON, KindText, KindSRT, KindWebVTT}

// ErrUnknownFormat is returned by Load for names outside Kinds.
var ErrUnknownFormat = errors.New("unknown format")

// Load returns the formatter registered under name. Matching ignores case
// and surrounding space; "vtt" is accepted for WebVTT.
func Load(name string) (Formatter, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case KindJSON:
		return JSON{}, nil
	case KindPrettyJSON:
		return JSON{Indent: "  "}, nil
	case KindText:
		return Text{}, nil
	case KindSRT:
		return SRT{}, nil
	case KindWebVTT, "vtt":
		return WebVTT{}, nil
	}
	return nil, fmt.Errorf("%w %q, supported: %v", ErrUnknownFormat, name, Kinds)
}

// Text joins snippet texts with newlines. Multiple transcripts are separated
// by two blank lines.
type Text struct{}

func (Text) FormatTranscript(t *transcript.FetchedTranscript) (string, error) {
	lines := make([]string, 0, t.Len())
	for _, s := range t.All() {
		lines = append(lines, s.Text)
	}
	return strings.Join(lines, "\n"), nil
}

func (f Text) FormatTranscripts(ts []*transcript.FetchedTranscript) (string, error) {
	return joinEach(f, ts)
}

// joinEach formats each transcript on its own and joins them with "\n\n\n".
func joinEach(f Formatter, ts []*transcript.FetchedTranscript) (string, error) {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		s, err := f.FormatTranscript(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n\n"), nil
}
