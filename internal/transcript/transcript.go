// Package transcript resolves the caption tracks of a YouTube video and
// fetches them as timed snippets.
//
// The flow is ListFetcher.Fetch → TranscriptList → Transcript.Fetch →
// FetchedTranscript. Everything except the three HTTP calls (watch page,
// player endpoint, caption track) is pure.
package transcript

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Snippet is one timed caption line. Times are in seconds.
type Snippet struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// End is Start + Duration.
func (s Snippet) End() float64 { return s.Start + s.Duration }

// FetchedTranscript is the downloaded content of one caption track.
type FetchedTranscript struct {
	Snippets     []Snippet `json:"snippets"`
	VideoID      string    `json:"video_id"`
	Language     string    `json:"language"`
	LanguageCode string    `json:"language_code"`
	IsGenerated  bool      `json:"is_generated"`
}

func (f *FetchedTranscript) Len() int { return len(f.Snippets) }

func (f *FetchedTranscript) At(i int) Snippet { return f.Snippets[i] }

// All iterates the snippets in order. It can be ranged over repeatedly.
func (f *FetchedTranscript) All() iter.Seq2[int, Snippet] {
	return slices.All(f.Snippets)
}

// ToRawData returns a copy of the snippets.
func (f *FetchedTranscript) ToRawData() []Snippet {
	return slices.Clone(f.Snippets)
}

// TranslationLanguage is a target a translatable track can be rendered in.
type TranslationLanguage struct {
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
}

// poTokenMarker flags caption URLs that only work with a PO token.
const poTokenMarker = "&exp=xpe"

// Transcript is a lazy handle on one caption track. It holds no caption
// data; Fetch downloads it.
type Transcript struct {
	tr                   Transport
	videoID              string
	url                  string
	language             string
	languageCode         string
	isGenerated          bool
	translationLanguages []TranslationLanguage
}

func (t *Transcript) VideoID() string      { return t.videoID }
func (t *Transcript) URL() string          { return t.url }
func (t *Transcript) Language() string     { return t.language }
func (t *Transcript) LanguageCode() string { return t.languageCode }
func (t *Transcript) IsGenerated() bool    { return t.isGenerated }

// TranslationLanguages returns a copy of the track's translation targets.
func (t *Transcript) TranslationLanguages() []TranslationLanguage {
	return slices.Clone(t.translationLanguages)
}

func (t *Transcript) IsTranslatable() bool { return len(t.translationLanguages) > 0 }

// Fetch downloads and parses the caption track.
func (t *Transcript) Fetch(ctx context.Context, preserveFormatting bool) (*FetchedTranscript, error) {
	if strings.Contains(t.url, poTokenMarker) {
		return nil, &PoTokenRequiredError{videoError{t.videoID}}
	}
	resp, err := t.tr.Get(ctx, t.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch caption track %s: %w", t.languageCode, err)
	}
	if err := checkStatus(t.videoID, resp); err != nil {
		return nil, err
	}
	return &FetchedTranscript{
		Snippets:     ParseSnippets(resp.Body, preserveFormatting),
		VideoID:      t.videoID,
		Language:     t.language,
		LanguageCode: t.languageCode,
		IsGenerated:  t.isGenerated,
	}, nil
}

// Translate returns a new handle for this track machine-translated into
// languageCode. The receiver is not modified and the result cannot be
// translated again.
func (t *Transcript) Translate(languageCode string) (*Transcript, error) {
	if !t.IsTranslatable() {
		return nil, &NotTranslatableError{videoError{t.videoID}}
	}
	idx := slices.IndexFunc(t.translationLanguages, func(l TranslationLanguage) bool {
		return l.LanguageCode == languageCode
	})
	if idx < 0 {
		return nil, &TranslationLanguageNotAvailableError{videoError: videoError{t.videoID}, LanguageCode: languageCode}
	}
	return &Transcript{
		tr:           t.tr,
		videoID:      t.videoID,
		url:          t.url + "&tlang=" + languageCode,
		language:     t.translationLanguages[idx].Language,
		languageCode: languageCode,
		isGenerated:  true,
	}, nil
}

// String renders the track as in the catalog listing.
func (t *Transcript) String() string {
	s := fmt.Sprintf("%s (%q)", t.languageCode, t.language)
	if t.IsTranslatable() {
		s += "[TRANSLATABLE]"
	}
	return s
}

// tier is one origin partition of the catalog, in arrival order.
type tier struct {
	byCode map[string]*Transcript
	order  []string
}

func newTier() tier { return tier{byCode: make(map[string]*Transcript)} }

// put stores t; a later track with the same code replaces the earlier one.
func (tr *tier) put(t *Transcript) {
	if _, ok := tr.byCode[t.languageCode]; !ok {
		tr.order = append(tr.order, t.languageCode)
	}
	tr.byCode[t.languageCode] = t
}

func (tr *tier) list() []*Transcript {
	out := make([]*Transcript, 0, len(tr.order))
	for _, code := range tr.order {
		out = append(out, tr.byCode[code])
	}
	return out
}

// TranscriptList is the caption catalog of one video. It is immutable.
type TranscriptList struct {
	videoID              string
	manual               tier
	generated            tier
	translationLanguages []TranslationLanguage
}

func (l *TranscriptList) VideoID() string { return l.videoID }

// Manual returns the manually created tracks.
func (l *TranscriptList) Manual() []*Transcript { return l.manual.list() }

// Generated returns the auto-generated (ASR) tracks.
func (l *TranscriptList) Generated() []*Transcript { return l.generated.list() }

// TranslationLanguages returns the catalog-wide translation targets.
func (l *TranscriptList) TranslationLanguages() []TranslationLanguage {
	return slices.Clone(l.translationLanguages)
}

// All iterates manual tracks, then generated ones.
func (l *TranscriptList) All() iter.Seq[*Transcript] {
	return func(yield func(*Transcript) bool) {
		for _, t := range l.Manual() {
			if !yield(t) {
				return
			}
		}
		for _, t := range l.Generated() {
			if !yield(t) {
				return
			}
		}
	}
}

// FindTranscript returns the first track matching the requested codes in
// order, preferring a manual track over a generated one for the same code.
func (l *TranscriptList) FindTranscript(languageCodes []string) (*Transcript, error) {
	return l.find(languageCodes, &l.manual, &l.generated)
}

// FindGeneratedTranscript only searches auto-generated tracks.
func (l *TranscriptList) FindGeneratedTranscript(languageCodes []string) (*Transcript, error) {
	return l.find(languageCodes, &l.generated)
}

// FindManuallyCreatedTranscript only searches manually created tracks.
func (l *TranscriptList) FindManuallyCreatedTranscript(languageCodes []string) (*Transcript, error) {
	return l.find(languageCodes, &l.manual)
}

func (l *TranscriptList) find(codes []string, tiers ...*tier) (*Transcript, error) {
	for _, code := range codes {
		for _, tr := range tiers {
			if t, ok := tr.byCode[code]; ok {
				return t, nil
			}
		}
	}
	return nil, &NoTranscriptFoundError{
		videoError:         videoError{l.videoID},
		RequestedLanguages: slices.Clone(codes),
		Catalog:            l.String(),
	}
}

// String is the human-readable catalog used in error messages.
func (l *TranscriptList) String() string {
	return fmt.Sprintf(
		"For this video (%s) transcripts are available in the following languages:\n\n"+
			"(MANUALLY CREATED)\n%s\n\n(GENERATED)\n%s\n\n(TRANSLATION LANGUAGES)\n%s",
		l.videoID,
		describeTracks(l.Manual()),
		describeTracks(l.Generated()),
		describeTranslations(l.translationLanguages),
	)
}

func describeTracks(ts []*Transcript) string {
	if len(ts) == 0 {
		return "None"
	}
	lines := make([]string, len(ts))
	for i, t := range ts {
		lines[i] = " - " + t.String()
	}
	return strings.Join(lines, "\n")
}

func describeTranslations(langs []TranslationLanguage) string {
	if len(langs) == 0 {
		return "None"
	}
	lines := make([]string, len(langs))
	for i, l := range langs {
		lines[i] = fmt.Sprintf(" - %s (%q)", l.LanguageCode, l.Language)
	}
	return strings.Join(lines, "\n")
}

// captionTrack and captionsRenderer mirror the player response JSON.
type captionTrack struct {
	BaseURL        string         `json:"baseUrl"`
	Name           *formattedText `json:"name"`
	LanguageCode   string         `json:"languageCode"`
	Kind           string         `json:"kind"` // "asr" = auto-generated
	IsTranslatable bool           `json:"isTranslatable"`
}

type captionsRenderer struct {
	CaptionTracks        []captionTrack `json:"captionTracks"`
	TranslationLanguages []struct {
		LanguageCode string         `json:"languageCode"`
		LanguageName *formattedText `json:"languageName"`
	} `json:"translationLanguages"`
}

// newTranscriptList partitions the raw caption tracks by origin.
func newTranscriptList(tr Transport, videoID string, r *captionsRenderer) *TranscriptList {
	l := &TranscriptList{
		videoID:   videoID,
		manual:    newTier(),
		generated: newTier(),
	}
	for _, tl := range r.TranslationLanguages {
		l.translationLanguages = append(l.translationLanguages, TranslationLanguage{
			Language:     tl.LanguageName.String(),
			LanguageCode: tl.LanguageCode,
		})
	}

	for _, ct := range r.CaptionTracks {
		t := &Transcript{
			tr:           tr,
			videoID:      videoID,
			url:          strings.Replace(ct.BaseURL, "&fmt=srv3", "", 1),
			language:     ct.Name.String(),
			languageCode: ct.LanguageCode,
			isGenerated:  ct.Kind == "asr",
		}
		if ct.IsTranslatable {
			t.translationLanguages = l.translationLanguages
		}
		if t.isGenerated {
			l.generated.put(t)
		} else {
			l.manual.put(t)
		}
	}
	return l
}
