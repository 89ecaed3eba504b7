package transcript

import (
	"testing"
)

const sampleTimedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.54">Hey, this is just a test</text>
<text start="1.54" dur="4.16">this is &lt;i&gt;not&lt;/i&gt; the original transcript</text>
<text start="5.7" dur="3.239"></text>
<text start="bad">test &amp;amp; test, &lt;b&gt;bold&lt;/b&gt; and &lt;font color=&quot;white&quot;&gt;font&lt;/font&gt;</text>
</transcript>`

func TestParseSnippets(t *testing.T) {
	got := ParseSnippets([]byte(sampleTimedText), false)
	want := []Snippet{
		{Text: "Hey, this is just a test", Start: 0, Duration: 1.54},
		{Text: "this is not the original transcript", Start: 1.54, Duration: 4.16},
		{Text: "test & test, bold and font", Start: 0, Duration: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d snippets, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snippet %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseSnippetsPreserveFormatting(t *testing.T) {
	got := ParseSnippets([]byte(sampleTimedText), true)
	if len(got) != 3 {
		t.Fatalf("got %d snippets, want 3", len(got))
	}
	if got[1].Text != "this is <i>not</i> the original transcript" {
		t.Errorf("italic not kept: %q", got[1].Text)
	}
	if got[2].Text != "test & test, <b>bold</b> and font" {
		t.Errorf("unexpected text: %q", got[2].Text)
	}
}

func TestParseSnippetsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"malformed", `<transcript><text start="0">oops</txt></transcript>`},
		{"empty", ``},
		{"no text elements", `<transcript></transcript>`},
		{"other elements", `<timedtext><body><p t="0">x</p></body></timedtext>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSnippets([]byte(tt.raw), false)
			if got == nil || len(got) != 0 {
				t.Errorf("ParseSnippets() = %#v, want empty non-nil slice", got)
			}
		})
	}
}

func TestParseSnippetsKeepsOrderAndDuplicates(t *testing.T) {
	raw := `<transcript><text start="5" dur="1">b</text><text start="1" dur="1">a</text><text start="1" dur="1">a</text></transcript>`
	got := ParseSnippets([]byte(raw), false)
	if len(got) != 3 || got[0].Text != "b" || got[1].Start != 1 || got[2].Text != "a" {
		t.Errorf("order or duplicates changed: %+v", got)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		in       string
		preserve bool
		want     string
	}{
		{"<b>x</b>", false, "x"},
		{"<b>x</b>", true, "<b>x</b>"},
		{"<STRONG>x</STRONG>", true, "<STRONG>x</STRONG>"},
		{`<font color="red">x</font>`, true, "x"},
		{"<br/>x<sup>2</sup>", true, "x<sup>2</sup>"},
		{"<bold>x</bold>", true, "x"},
	}
	for _, tt := range tests {
		if got := stripTags(tt.in, tt.preserve); got != tt.want {
			t.Errorf("stripTags(%q, %v) = %q, want %q", tt.in, tt.preserve, got, tt.want)
		}
	}
}
