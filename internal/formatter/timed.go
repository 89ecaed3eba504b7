package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// dialect is what separates the subtitle formats built on cues.
type dialect struct {
	msSep    byte   // between seconds and milliseconds
	numbered bool   // 1-based sequence line before each cue
	header   string // document prefix
}

var (
	srtDialect    = dialect{msSep: ',', numbered: true}
	webvttDialect = dialect{msSep: '.', header: "WEBVTT\n\n"}
)

// SRT renders SubRip subtitles.
type SRT struct{}

func (SRT) FormatTranscript(t *transcript.FetchedTranscript) (string, error) {
	return srtDialect.render(t), nil
}

func (f SRT) FormatTranscripts(ts []*transcript.FetchedTranscript) (string, error) {
	return joinEach(f, ts)
}

// WebVTT renders Web Video Text Tracks.
type WebVTT struct{}

func (WebVTT) FormatTranscript(t *transcript.FetchedTranscript) (string, error) {
	return webvttDialect.render(t), nil
}

func (f WebVTT) FormatTranscripts(ts []*transcript.FetchedTranscript) (string, error) {
	return joinEach(f, ts)
}

func (d dialect) render(t *transcript.FetchedTranscript) string {
	cues := make([]string, 0, t.Len())
	for i, s := range t.All() {
		end := s.End()
		// a cue never runs past the start of the next one
		if i+1 < t.Len() {
			end = math.Min(end, t.At(i+1).Start)
		}

		var sb strings.Builder
		if d.numbered {
			sb.WriteString(strconv.Itoa(i + 1))
			sb.WriteByte('\n')
		}
		sb.WriteString(d.timestamp(s.Start))
		sb.WriteString(" --> ")
		sb.WriteString(d.timestamp(end))
		sb.WriteByte('\n')
		sb.WriteString(s.Text)
		cues = append(cues, sb.String())
	}
	return d.header + strings.Join(cues, "\n\n") + "\n"
}

// timestamp renders seconds as HH:MM:SS<sep>mmm. Hours are not wrapped.
func (d dialect) timestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	whole := math.Floor(seconds)
	ms := int64(math.Round((seconds - whole) * 1000))
	total := int64(whole)
	if ms == 1000 {
		total++
		ms = 0
	}
	h, m, s := total/3600, total%3600/60, total%60
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, d.msSep, ms)
}
