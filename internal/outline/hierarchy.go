package outline

import (
	"sort"
)

// BuildHierarchy normalizes levels, reorders entries parent-before-children and
// clamps level jumps so the result is a legal outline.
func BuildHierarchy(cands []Candidate, maxDepth int) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	cands, d := Normalize(cands)
	diags = append(diags, d...)
	cands, d = LimitDepth(cands, maxDepth)
	diags = append(diags, d...)
	cands = Reorder(cands)
	cands, d = ClampLevels(cands)
	diags = append(diags, d...)
	return cands, diags
}

// Normalize sets numbered levels to their path depth and pulls down levels
// that jump past the deepest open level, unless the path itself justifies the depth.
func Normalize(cands []Candidate) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	out := make([]Candidate, len(cands))
	var open []int
	for i, c := range cands {
		level := max(1, c.Level)
		if c.Numbered() {
			level = len(c.Path)
		}
		kept := open[:0]
		for _, l := range open {
			if l < level {
				kept = append(kept, l)
			}
		}
		open = kept
		if len(open) > 0 {
			deepest := maxInt(open)
			if level > deepest+1 && !(c.Numbered() && len(c.Path) == level) {
				diags.add(StageNormalize, OutlineConstraintViolation, c, "level %d lowered to %d", level, deepest+1)
				level = deepest + 1
			}
		}
		open = append(open, level)
		c.Level = level
		out[i] = c
	}
	return out, diags
}

func maxInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		m = max(m, x)
	}
	return m
}

// LimitDepth drops entries nested deeper than maxDepth.
func LimitDepth(cands []Candidate, maxDepth int) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	if maxDepth <= 0 || maxDepth >= MaxDepth {
		return cands, diags
	}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Level > maxDepth {
			diags.reject(StageNormalize, c, "level %d is deeper than max depth %d", c.Level, maxDepth)
			continue
		}
		out = append(out, c)
	}
	return out, diags
}

// prefixIndex is the arena the reorder walks: candidate indices keyed by their
// full path, and each prefix's direct child prefixes.
type prefixIndex struct {
	entries  map[PathKey][]int
	children map[PathKey][]PathKey
	tops     []PathKey
	loose    []int
}

func indexPrefixes(cands []Candidate) prefixIndex {
	ix := prefixIndex{entries: map[PathKey][]int{}, children: map[PathKey][]PathKey{}}
	seen := map[PathKey]bool{}
	for i, c := range cands {
		if !c.Numbered() || len(c.Path) > MaxDepth {
			ix.loose = append(ix.loose, i)
			continue
		}
		for n := 1; n <= len(c.Path); n++ {
			k := c.Path[:n].Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			if n == 1 {
				ix.tops = append(ix.tops, k)
			} else {
				p := k.Parent()
				ix.children[p] = append(ix.children[p], k)
			}
		}
		k := c.Path.Key()
		ix.entries[k] = append(ix.entries[k], i)
	}
	sortKeys(ix.tops)
	for _, ks := range ix.children {
		sortKeys(ks)
	}
	return ix
}

func sortKeys(ks []PathKey) {
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].Less(ks[j]) })
}

// Reorder emits numbered entries depth-first in numeric order, each prefix
// group in encounter order before its children, then every unnumbered entry in
// encounter order. Reordering its own output changes nothing.
func Reorder(cands []Candidate) []Candidate {
	ix := indexPrefixes(cands)
	out := make([]Candidate, 0, len(cands))
	var walk func(k PathKey, depth int)
	walk = func(k PathKey, depth int) {
		for _, i := range ix.entries[k] {
			out = append(out, cands[i])
		}
		if depth >= MaxDepth {
			return
		}
		for _, child := range ix.children[k] {
			walk(child, depth+1)
		}
	}
	for _, k := range ix.tops {
		walk(k, 1)
	}
	for _, i := range ix.loose {
		out = append(out, cands[i])
	}
	return out
}

// ClampLevels makes the first entry level 1 and caps every later level at one
// more than the deepest level seen so far. Going back up never raises that maximum.
func ClampLevels(cands []Candidate) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	out := make([]Candidate, len(cands))
	deepest := 0
	for i, c := range cands {
		level := c.Level
		switch {
		case level < 1:
			level = 1
		case level > deepest+1:
			level = deepest + 1
		}
		if level != c.Level {
			diags.add(StageClamp, OutlineConstraintViolation, c, "level %d clamped to %d", c.Level, level)
		}
		deepest = max(deepest, level)
		c.Level = level
		out[i] = c
	}
	return out, diags
}

// LegalLevels reports whether levels form a valid outline sequence.
func LegalLevels(levels []int) bool {
	deepest := 0
	for _, l := range levels {
		if l < 1 || l > deepest+1 {
			return false
		}
		deepest = max(deepest, l)
	}
	return true
}
