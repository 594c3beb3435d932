package search

import (
	"unicode"

	"github.com/hyperjump/docchat/pkg/utils"
)

// Highlight returns a single-line excerpt of content of at most maxLen runes. The window starts a
// little before the first occurrence of any of terms, so the preview shows why the chunk matched.
// Elided text on either side is marked with "...".
func Highlight(content string, terms []string, maxLen int) string {
	text := utils.CollapseSpace(content)
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}

	start := 0
	if at := firstMatch(runes, terms); at > 0 {
		start = at - maxLen/4
	}
	if start+maxLen > len(runes) {
		start = len(runes) - maxLen
	}
	if start < 0 {
		start = 0
	}
	end := start + maxLen

	out := string(runes[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}

// firstMatch returns the rune offset of the earliest case-insensitive occurrence of any term, or -1.
func firstMatch(runes []rune, terms []string) int {
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}
	best := -1
	for _, term := range terms {
		t := []rune(term)
		for i := range t {
			t[i] = unicode.ToLower(t[i])
		}
		if at := indexRunes(lower, t); at >= 0 && (best < 0 || at < best) {
			best = at
		}
	}
	return best
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
