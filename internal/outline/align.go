package outline

import (
	"math"
)

// Reference is the heading column of a document.
type Reference struct {
	X     float64 `json:"x"`
	Title string  `json:"title,omitempty"`
	Page  int     `json:"page,omitempty"`
	Found bool    `json:"found"`
}

// DetectReference takes the left edge of the largest-font fragment on the first
// page as the heading column. When numbered candidates mostly start at a nearby
// column (within twice the tolerance) that column wins.
func DetectReference(frags []TextFragment, cands []Candidate, cfg AlignmentConfig) Reference {
	if cfg.ReferenceX != nil {
		return Reference{X: *cfg.ReferenceX, Found: true}
	}
	first := 0
	for _, f := range frags {
		if first == 0 || f.Page < first {
			first = f.Page
		}
	}
	var ref Reference
	best := -1.0
	for _, f := range frags {
		if f.Page != first || f.FontSize <= best {
			continue
		}
		best = f.FontSize
		ref = Reference{X: f.BBox.X, Title: f.Text, Page: f.Page, Found: true}
	}
	if !ref.Found {
		return ref
	}
	if x, ok := dominantColumn(cands); ok && x != ref.X && math.Abs(x-ref.X) <= 2*cfg.Tolerance {
		ref.X = x
	}
	return ref
}

func dominantColumn(cands []Candidate) (float64, bool) {
	counts := map[float64]int{}
	var order []float64
	for _, c := range cands {
		if c.Kind == KindNone {
			continue
		}
		x := math.Round(c.BBox.X)
		if counts[x] == 0 {
			order = append(order, x)
		}
		counts[x]++
	}
	bestX, bestN := 0.0, 0
	for _, x := range order {
		if counts[x] > bestN {
			bestX, bestN = x, counts[x]
		}
	}
	return bestX, bestN > 0
}

// FilterAlignment drops candidates whose left edge is off the reference column.
// Candidates right of the column may sit LevelIndent further in per level.
func FilterAlignment(cands []Candidate, ref Reference, cfg AlignmentConfig) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	if !cfg.Enabled || !ref.Found {
		return cands, diags
	}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if cfg.ExcludeDocumentTitle && c.Page == ref.Page && c.Text == ref.Title {
			diags.reject(StageAlign, c, "document title")
			continue
		}
		dx := c.BBox.X - ref.X
		allowed := cfg.Tolerance
		if dx > 0 && c.Level > 1 {
			allowed += cfg.LevelIndent * float64(c.Level-1)
		}
		if math.Abs(dx) > allowed {
			diags.reject(StageAlign, c, "x=%.1f is %.1f from column %.1f (allowed %.1f)", c.BBox.X, dx, ref.X, allowed)
			continue
		}
		out = append(out, c)
	}
	return out, diags
}
