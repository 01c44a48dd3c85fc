package ai

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxFallbackTitleRunes = 100

var pageLikeRe = regexp.MustCompile(`(?i)^(?:\d+|[-–—]\s*\d+\s*[-–—]|第\s*\d+\s*页|共\s*\d+\s*页|page\s+\d+(?:\s+of\s+\d+)?|\d+\s*/\s*\d+)$`)

// LocalFilter is the rule applied when the service cannot be used: it drops
// page-number-like, over-long and obviously non-title entries.
func LocalFilter(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !plausibleTitle(it.Title) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func plausibleTitle(title string) bool {
	t := strings.TrimSpace(title)
	if t == "" || pageLikeRe.MatchString(t) {
		return false
	}
	if utf8.RuneCountInString(t) > maxFallbackTitleRunes {
		return false
	}
	if strings.Contains(t, "://") || strings.Contains(t, "@") {
		return false
	}
	punct, other := 0, 0
	for _, r := range t {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			punct++
		case !unicode.IsSpace(r):
			other++
		}
	}
	// Numbering dots such as 1.2.3 are allowed; heavier punctuation is prose.
	return other > 0 && punct-leadingNumberDots(t) <= 4
}

func leadingNumberDots(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r == '.':
			n++
		case r >= '0' && r <= '9':
		default:
			return n
		}
	}
	return n
}
