package engine

import "github.com/anatolykoptev/go_transcript/internal/transcript"

// --- transcript_list ---

type TranscriptListInput struct {
	VideoID string `json:"video_id" jsonschema:"YouTube video id, the v= parameter of the watch URL (e.g. dQw4w9WgXcQ), not the URL itself"`
}

// TrackInfo describes one caption track of a video.
type TrackInfo struct {
	LanguageCode   string `json:"language_code"`
	Language       string `json:"language"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

// TranscriptListOutput is the structured output for transcript_list.
type TranscriptListOutput struct {
	VideoID              string                           `json:"video_id"`
	Manual               []TrackInfo                      `json:"manual"`
	Generated            []TrackInfo                      `json:"generated"`
	TranslationLanguages []transcript.TranslationLanguage `json:"translation_languages"`
}

// NewTranscriptListOutput flattens a catalog for tool output.
func NewTranscriptListOutput(l *transcript.TranscriptList) TranscriptListOutput {
	info := func(ts []*transcript.Transcript) []TrackInfo {
		out := make([]TrackInfo, 0, len(ts))
		for _, t := range ts {
			out = append(out, TrackInfo{
				LanguageCode:   t.LanguageCode(),
				Language:       t.Language(),
				IsGenerated:    t.IsGenerated(),
				IsTranslatable: t.IsTranslatable(),
			})
		}
		return out
	}
	langs := l.TranslationLanguages()
	if langs == nil {
		langs = []transcript.TranslationLanguage{}
	}
	return TranscriptListOutput{
		VideoID:              l.VideoID(),
		Manual:               info(l.Manual()),
		Generated:            info(l.Generated()),
		TranslationLanguages: langs,
	}
}

// --- transcript_fetch ---

type TranscriptFetchInput struct {
	VideoID            string   `json:"video_id" jsonschema:"YouTube video id, not the URL"`
	Languages          []string `json:"languages,omitempty" jsonschema:"Language codes in order of preference (e.g. [\"de\", \"en\"]). Manual tracks win over auto-generated ones. Default: server setting, usually en"`
	Format             string   `json:"format,omitempty" jsonschema:"Output format: json, pretty, text, srt, webvtt (default: json)"`
	PreserveFormatting bool     `json:"preserve_formatting,omitempty" jsonschema:"Keep inline HTML formatting such as <b> and <i> in caption text"`
	TranslateTo        string   `json:"translate_to,omitempty" jsonschema:"Machine-translate the found track into this language code"`
}

// TranscriptFetchOutput is the structured output for transcript_fetch.
type TranscriptFetchOutput struct {
	VideoID      string `json:"video_id"`
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	IsGenerated  bool   `json:"is_generated"`
	Format       string `json:"format"`
	SnippetCount int    `json:"snippet_count"`
	Content      string `json:"content"`
}

// --- transcript_text ---

type TranscriptTextInput struct {
	VideoID   string   `json:"video_id" jsonschema:"YouTube video id, not the URL"`
	Languages []string `json:"languages,omitempty" jsonschema:"Language codes in order of preference (default: server setting, usually en)"`
	MaxChars  int      `json:"max_chars,omitempty" jsonschema:"Cap on returned characters (default: server setting)"`
}

// TranscriptTextOutput is the structured output for transcript_text.
type TranscriptTextOutput struct {
	VideoID      string `json:"video_id"`
	LanguageCode string `json:"language_code"`
	IsGenerated  bool   `json:"is_generated"`
	Text         string `json:"text"`
	Truncated    bool   `json:"truncated,omitempty"`
}
