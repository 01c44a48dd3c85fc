package outline

import (
	"strings"
	"unicode"
)

const DefaultMatchThreshold = 0.8

// MatchTitles locates each wanted bookmark in the document. An exact match on
// the cleaned text wins; otherwise, with fuzzy set, the fragment with the best
// similarity above threshold. Levels come from want, pages from the match.
func MatchTitles(want []Bookmark, frags []TextFragment, fuzzy bool, threshold float64) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	cleaned := make([][]rune, len(frags))
	exact := map[string]int{}
	for i, f := range frags {
		key := cleanForMatch(f.Text)
		cleaned[i] = []rune(key)
		if _, ok := exact[key]; !ok && key != "" {
			exact[key] = i
		}
	}
	var out []Candidate
	for _, w := range want {
		key := cleanForMatch(w.Title)
		idx, ok := exact[key]
		if !ok && fuzzy && key != "" {
			idx, ok = bestSimilar([]rune(key), cleaned, threshold)
		}
		unmatched := Candidate{Label: w.Title, TextFragment: TextFragment{Page: w.Page}}
		if !ok {
			diags.reject(StageMatch, unmatched, "no matching text in document")
			continue
		}
		f := frags[idx]
		c := Candidate{
			TextFragment: f,
			Level:        max(1, w.Level),
			TargetPage:   f.Page,
			Label:        w.Title,
			Title:        w.Title,
		}
		if h, ok := Classify(w.Title); ok {
			c.Kind, c.Path, c.Title = h.Kind, h.Path, h.Title
		}
		out = append(out, c)
	}
	return out, diags
}

func bestSimilar(target []rune, cleaned [][]rune, threshold float64) (int, bool) {
	best, bestScore := -1, threshold
	for i, c := range cleaned {
		if len(c) == 0 {
			continue
		}
		if s := similarity(target, c); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best, best >= 0
}

func cleanForMatch(s string) string {
	s = foldTitle(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
}

// similarity is the longest common subsequence length over the longer length.
func similarity(a, b []rune) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return float64(lcs(a, b)) / float64(longest)
}

func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
