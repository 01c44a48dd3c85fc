package outline

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// foldTitle folds case, full-width forms and whitespace so visually equal titles compare equal.
func foldTitle(s string) string {
	s = width.Fold.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

func foldAll(xs []string) []string {
	var out []string
	for _, x := range xs {
		if f := foldTitle(x); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Dedup keeps the first entry for each folded label and drops labels shorter
// than three characters once folded. Dedup(Dedup(x)) == Dedup(x).
func Dedup(cands []Candidate) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	seen := map[string]bool{}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		key := foldTitle(c.Label)
		if utf8.RuneCountInString(key) < minHeadingRunes {
			diags.reject(StageDedup, c, "title too short")
			continue
		}
		if seen[key] {
			diags.reject(StageDedup, c, "duplicate title")
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out, diags
}
