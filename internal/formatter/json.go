package formatter

import (
	"encoding/json"

	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// JSON renders snippets as an array of {text,start,duration} objects.
// A non-empty Indent pretty-prints. Multiple transcripts become an array of
// arrays.
type JSON struct {
	Indent string
}

func (f JSON) FormatTranscript(t *transcript.FetchedTranscript) (string, error) {
	return f.marshal(rawData(t))
}

func (f JSON) FormatTranscripts(ts []*transcript.FetchedTranscript) (string, error) {
	raw := make([][]transcript.Snippet, 0, len(ts))
	for _, t := range ts {
		raw = append(raw, rawData(t))
	}
	return f.marshal(raw)
}

func (f JSON) marshal(v any) (string, error) {
	var (
		b   []byte
		err error
	)
	if f.Indent != "" {
		b, err = json.MarshalIndent(v, "", f.Indent)
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rawData never returns nil, so an empty transcript encodes as [].
func rawData(t *transcript.FetchedTranscript) []transcript.Snippet {
	if raw := t.ToRawData(); raw != nil {
		return raw
	}
	return []transcript.Snippet{}
}
