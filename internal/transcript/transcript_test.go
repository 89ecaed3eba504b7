package transcript

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func buildList(t *testing.T, tr Transport, tracks ...map[string]any) *TranscriptList {
	t.Helper()
	var p playerResponse
	if err := jsonResp(playerJSON(tracks...)).JSON(&p); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return newTranscriptList(tr, testVideoID, p.Captions.PlayerCaptionsTracklistRenderer)
}

func TestNewTranscriptListPartitions(t *testing.T) {
	l := buildList(t, newFake(),
		track("en", "English", "asr", true),
		track("de", "Deutsch", "", true),
		track("en", "English", "", false),
		track("de", "Deutsch (old)", "", false),
	)

	manual, generated := l.Manual(), l.Generated()
	if len(manual) != 2 || len(generated) != 1 {
		t.Fatalf("manual=%d generated=%d, want 2 and 1", len(manual), len(generated))
	}
	if manual[0].LanguageCode() != "de" || manual[1].LanguageCode() != "en" {
		t.Errorf("manual order = %s, %s", manual[0].LanguageCode(), manual[1].LanguageCode())
	}
	// last track for a code wins
	if manual[0].Language() != "Deutsch (old)" || manual[0].IsTranslatable() {
		t.Errorf("expected later de track to replace earlier one, got %s", manual[0])
	}
	if !generated[0].IsGenerated() || !generated[0].IsTranslatable() {
		t.Errorf("generated track flags wrong: %s", generated[0])
	}
	if strings.Contains(generated[0].URL(), "fmt=srv3") {
		t.Errorf("srv3 format not stripped: %s", generated[0].URL())
	}
	if got := len(l.TranslationLanguages()); got != 2 {
		t.Errorf("translation languages = %d, want 2", got)
	}
	if langs := generated[0].TranslationLanguages(); len(langs) != 2 || langs[1].Language != "Japanese" {
		t.Errorf("track translation languages = %+v", langs)
	}

	var codes []string
	for tr := range l.All() {
		codes = append(codes, tr.LanguageCode())
	}
	if strings.Join(codes, ",") != "de,en,en" {
		t.Errorf("All() = %v", codes)
	}
}

func TestFindTranscriptPrecedence(t *testing.T) {
	l := buildList(t, newFake(),
		track("en", "English (auto-generated)", "asr", false),
		track("de", "Deutsch", "", false),
	)

	tests := []struct {
		name      string
		find      func([]string) (*Transcript, error)
		codes     []string
		wantCode  string
		generated bool
	}{
		{"requested order wins", l.FindTranscript, []string{"de", "en"}, "de", false},
		{"generated when only generated", l.FindTranscript, []string{"en"}, "en", true},
		{"first code missing", l.FindTranscript, []string{"fr", "en"}, "en", true},
		{"generated tier only", l.FindGeneratedTranscript, []string{"de", "en"}, "en", true},
		{"manual tier only", l.FindManuallyCreatedTranscript, []string{"en", "de"}, "de", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.find(tt.codes)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.LanguageCode() != tt.wantCode || got.IsGenerated() != tt.generated {
				t.Errorf("got %s generated=%v, want %s generated=%v", got.LanguageCode(), got.IsGenerated(), tt.wantCode, tt.generated)
			}
		})
	}
}

func TestFindTranscriptManualBeforeGenerated(t *testing.T) {
	l := buildList(t, newFake(),
		track("en", "English (auto-generated)", "asr", false),
		track("en", "English", "", false),
	)
	got, err := l.FindTranscript([]string{"en"})
	if err != nil {
		t.Fatal(err)
	}
	if got.IsGenerated() {
		t.Error("expected manual track to win over generated for the same code")
	}
}

func TestFindTranscriptNotFound(t *testing.T) {
	l := buildList(t, newFake(), track("en", "English", "", true))

	_, err := l.FindTranscript([]string{"xx", "yy"})
	var nf *NoTranscriptFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NoTranscriptFoundError, got %v", err)
	}
	if len(nf.RequestedLanguages) != 2 {
		t.Errorf("RequestedLanguages = %v", nf.RequestedLanguages)
	}
	msg := err.Error()
	for _, want := range []string{
		"https://www.youtube.com/watch?v=" + testVideoID,
		"[xx yy]",
		"(MANUALLY CREATED)\n - en (\"English\")[TRANSLATABLE]",
		"(GENERATED)\nNone",
		" - fr (\"French\")",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestTranslate(t *testing.T) {
	l := buildList(t, newFake(),
		track("en", "English", "", true),
		track("de", "Deutsch", "", false),
	)
	en, _ := l.FindTranscript([]string{"en"})
	de, _ := l.FindTranscript([]string{"de"})

	fr, err := en.Translate("fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if fr.LanguageCode() != "fr" || fr.Language() != "French" || !fr.IsGenerated() {
		t.Errorf("translated track = %s generated=%v", fr, fr.IsGenerated())
	}
	if !strings.HasSuffix(fr.URL(), "&tlang=fr") {
		t.Errorf("URL = %s", fr.URL())
	}
	if fr.IsTranslatable() {
		t.Error("translated track must not be translatable again")
	}
	if en.LanguageCode() != "en" || strings.Contains(en.URL(), "tlang") {
		t.Error("Translate mutated the original track")
	}

	if _, err := de.Translate("fr"); KindOf(err) != KindNotTranslatable {
		t.Errorf("non-translatable track: got %v", err)
	}
	if _, err := en.Translate("xx"); KindOf(err) != KindTranslationLanguageNotAvailable {
		t.Errorf("unknown target: got %v", err)
	}
	if _, err := fr.Translate("ja"); KindOf(err) != KindNotTranslatable {
		t.Errorf("re-translation: got %v", err)
	}
}

func TestTranslateUsesTrackTargets(t *testing.T) {
	l := buildList(t, newFake(), track("en", "English", "", true))
	en, _ := l.FindTranscript([]string{"en"})
	en.translationLanguages = en.translationLanguages[:1] // only fr

	// ja is still in the catalog-wide list but not a target of this track
	if _, err := en.Translate("ja"); KindOf(err) != KindTranslationLanguageNotAvailable {
		t.Errorf("got %v, want translation language unavailable", err)
	}
}

func TestTranscriptFetch(t *testing.T) {
	fake := newFake()
	fake.tracks[trackURL("en")] = ok(`<transcript><text start="0" dur="1.5">Hello &amp;amp; welcome</text><text start="1.5" dur="2">second</text></transcript>`)
	l := buildList(t, fake, track("en", "English", "", false))
	en, _ := l.FindTranscript([]string{"en"})

	got, err := en.Fetch(context.Background(), false)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Len() != 2 || got.At(0).Text != "Hello & welcome" || got.At(1).Start != 1.5 {
		t.Errorf("unexpected snippets: %+v", got.Snippets)
	}
	if got.VideoID != testVideoID || got.LanguageCode != "en" || got.Language != "English" || got.IsGenerated {
		t.Errorf("metadata wrong: %+v", got)
	}

	// iteration is restartable
	for range 2 {
		n := 0
		for i, s := range got.All() {
			if s != got.At(i) {
				t.Errorf("All() snippet %d mismatch", i)
			}
			n++
		}
		if n != 2 {
			t.Errorf("All() yielded %d snippets", n)
		}
	}

	raw := got.ToRawData()
	raw[0].Text = "changed"
	if got.At(0).Text == "changed" {
		t.Error("ToRawData must return a copy")
	}
}

func TestTranscriptFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Kind
	}{
		{"rate limited", http.StatusTooManyRequests, KindIPBlocked},
		{"server error", http.StatusInternalServerError, KindRequestFailed},
		{"forbidden", http.StatusForbidden, KindRequestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake()
			fake.tracks[trackURL("en")] = &Response{StatusCode: tt.status}
			l := buildList(t, fake, track("en", "English", "", false))
			en, _ := l.FindTranscript([]string{"en"})

			_, err := en.Fetch(context.Background(), false)
			if KindOf(err) != tt.want {
				t.Fatalf("kind = %v, want %v (%v)", KindOf(err), tt.want, err)
			}
			var rf *RequestFailedError
			if errors.As(err, &rf) && rf.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", rf.StatusCode, tt.status)
			}
		})
	}
}

func TestTranscriptFetchPoToken(t *testing.T) {
	fake := newFake()
	tr := &Transcript{tr: fake, videoID: testVideoID, url: trackURL("en") + "&exp=xpe", languageCode: "en"}

	_, err := tr.Fetch(context.Background(), false)
	if KindOf(err) != KindPoTokenRequired {
		t.Fatalf("got %v, want PO token error", err)
	}
	if len(fake.gets) != 0 {
		t.Errorf("expected no network call, got %v", fake.gets)
	}
}
