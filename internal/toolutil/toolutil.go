// Package toolutil provides shared helper functions for the transcript MCP tools.
package toolutil

import (
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
)

// TruncationSuffix marks text cut by TruncateText.
const TruncationSuffix = "\n[…truncated]"

// NormLanguages trims the codes, splits comma lists ("de,en") and drops
// empties and duplicates. Case is kept: YouTube codes like zh-Hans are
// case-sensitive.
func NormLanguages(codes []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range codes {
		for part := range strings.SplitSeq(c, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// NormVideoID trims surrounding space. URLs are passed through on purpose
// so the engine can report them as invalid video ids.
func NormVideoID(id string) string {
	return strings.TrimSpace(id)
}

// TruncateText caps s at limit runes. limit <= 0 means no cap.
func TruncateText(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	return strutil.TruncateWith(s, limit, TruncationSuffix), true
}
