package transcript

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"aqwari.net/xml/xmltree"
)

// Inline tags kept when formatting is preserved.
var formattingTags = map[string]bool{
	"strong": true,
	"em":     true,
	"b":      true,
	"i":      true,
	"mark":   true,
	"small":  true,
	"del":    true,
	"ins":    true,
	"sub":    true,
	"sup":    true,
}

var (
	anyTagRe  = regexp.MustCompile(`<[^>]*>`)
	tagNameRe = regexp.MustCompile(`^</?\s*([a-zA-Z][a-zA-Z0-9]*)`)
)

// ParseSnippets parses a timedtext XML body. Snippets keep document order.
// Malformed or caption-less documents yield an empty slice.
func ParseSnippets(raw []byte, preserveFormatting bool) []Snippet {
	root, err := xmltree.Parse(raw)
	if err != nil || root == nil {
		return []Snippet{}
	}

	snippets := make([]Snippet, 0, len(root.Children))
	for i := range root.Children {
		el := &root.Children[i]
		if el.Name.Local != "text" || len(el.Content) == 0 {
			continue
		}
		// Content is raw markup: decode the XML layer, strip tags, then
		// decode the HTML entities that were escaped inside it.
		body := html.UnescapeString(string(el.Content))
		body = html.UnescapeString(stripTags(body, preserveFormatting))
		snippets = append(snippets, Snippet{
			Text:     body,
			Start:    parseSeconds(el.Attr("", "start")),
			Duration: parseSeconds(el.Attr("", "dur")),
		})
	}
	return snippets
}

func stripTags(s string, preserveFormatting bool) string {
	if !preserveFormatting {
		return anyTagRe.ReplaceAllString(s, "")
	}
	return anyTagRe.ReplaceAllStringFunc(s, func(tag string) string {
		if m := tagNameRe.FindStringSubmatch(tag); m != nil && formattingTags[strings.ToLower(m[1])] {
			return tag
		}
		return ""
	})
}

func parseSeconds(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
