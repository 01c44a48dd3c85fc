package outline

import (
	"math"
	"sort"
)

type sequencePass struct {
	stage string
	run   func([]Candidate, SequenceConfig, *Diagnostics) []Candidate
}

// Pass order matters: each pass only sees what the previous ones kept.
var sequencePasses = []sequencePass{
	{StageContinuity, checkContinuity},
	{StageParentChild, checkParentChild},
	{StageOrdering, checkOrdering},
	{StageUnnumbered, checkUnnumbered},
	{StageLookahead, checkJumps},
}

// ValidateSequence runs the numbering passes over the candidates. A rejected
// candidate is never reinstated by a later pass.
func ValidateSequence(cands []Candidate, cfg SequenceConfig) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	for _, p := range sequencePasses {
		cands = p.run(cands, cfg, &diags)
	}
	return cands, diags
}

func checkContinuity(cands []Candidate, cfg SequenceConfig, diags *Diagnostics) []Candidate {
	seen := map[int]bool{}
	var tops []int
	for _, c := range cands {
		if c.Numbered() && !seen[c.Path[0]] {
			seen[c.Path[0]] = true
			tops = append(tops, c.Path[0])
		}
	}
	if len(tops) == 0 {
		return cands
	}
	sort.Ints(tops)
	valid := validTopLevels(tops, cfg.MinRun)
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Numbered() && !valid[c.Path[0]] {
			diags.reject(StageContinuity, c, "top-level number %d is outside the continuous run", c.Path[0])
			continue
		}
		out = append(out, c)
	}
	return out
}

// validTopLevels returns the run 1, 2, 3... when 1 is present, otherwise the
// longest run of at least minRun consecutive numbers. tops must be sorted and unique.
func validTopLevels(tops []int, minRun int) map[int]bool {
	valid := map[int]bool{}
	if tops[0] == 1 {
		for i, n := range tops {
			if n != i+1 {
				break
			}
			valid[n] = true
		}
		return valid
	}
	bestStart, bestLen := 0, 0
	start := 0
	for i := 1; i <= len(tops); i++ {
		if i < len(tops) && tops[i] == tops[i-1]+1 {
			continue
		}
		if n := i - start; n > bestLen {
			bestStart, bestLen = start, n
		}
		start = i
	}
	if bestLen >= minRun {
		for _, n := range tops[bestStart : bestStart+bestLen] {
			valid[n] = true
		}
	}
	return valid
}

func checkParentChild(cands []Candidate, _ SequenceConfig, diags *Diagnostics) []Candidate {
	accepted := map[PathKey]bool{}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if !c.Numbered() {
			out = append(out, c)
			continue
		}
		if len(c.Path) > 1 && !accepted[c.Path.Parent().Key()] {
			diags.reject(StageParentChild, c, "no accepted parent %s", c.Path.Parent())
			continue
		}
		accepted[c.Path.Key()] = true
		out = append(out, c)
	}
	return out
}

func checkOrdering(cands []Candidate, cfg SequenceConfig, diags *Diagnostics) []Candidate {
	var accepted []Path
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if !c.Numbered() {
			out = append(out, c)
			continue
		}
		if reason := orderingViolation(c.Path, accepted, cfg); reason != "" {
			diags.reject(StageOrdering, c, "%s", reason)
			continue
		}
		accepted = append(accepted, c.Path)
		out = append(out, c)
	}
	return out
}

type relation int

const (
	relUnrelated relation = iota
	relValid
	relViolation
)

func orderingViolation(cur Path, accepted []Path, cfg SequenceConfig) string {
	if len(accepted) == 0 {
		return ""
	}
	deep := len(cur) >= cfg.DeepDepth
	if deep {
		dup := 0
		for _, p := range accepted {
			if p.Equal(cur) {
				dup++
			}
		}
		if dup >= cfg.DeepDuplicateLimit {
			return "deep number " + cur.String() + " repeated too often"
		}
	}
	prev := mostRelevant(cur, accepted, cfg)
	if prev == nil {
		return ""
	}
	// Deep headings tolerate a repeat; the duplicate limit above caps it.
	if deep && prev.Equal(cur) {
		return ""
	}
	if rel, why := compareSequences(prev, cur, cfg); rel == relViolation {
		return cur.String() + " after " + prev.String() + ": " + why
	}
	return ""
}

// mostRelevant finds the accepted sequence cur should be compared against: the
// latest sibling if there is one, else the one sharing the longest prefix.
func mostRelevant(cur Path, accepted []Path, cfg SequenceConfig) Path {
	var best Path
	bestPrefix, bestDiff := -1, math.MaxInt
	deep := len(cur) >= cfg.DeepDepth
	for i := len(accepted) - 1; i >= 0; i-- {
		prev := accepted[i]
		common := cur.CommonPrefix(prev)
		if len(prev) == len(cur) && common >= len(cur)-1 {
			return prev
		}
		if deep && common < 3 {
			continue
		}
		diff := abs(len(cur) - len(prev))
		if common > bestPrefix || (common == bestPrefix && diff < bestDiff) {
			best, bestPrefix, bestDiff = prev, common, diff
		}
	}
	need := 2
	switch {
	case deep:
		need = 4
	case len(cur) >= 4:
		need = 3
	}
	if bestPrefix < need {
		return nil
	}
	return best
}

func compareSequences(prev, cur Path, cfg SequenceConfig) (relation, string) {
	common := cur.CommonPrefix(prev)
	if len(prev) == len(cur) {
		if common < len(cur)-1 {
			return relUnrelated, ""
		}
		last := len(cur) - 1
		ceiling := cfg.JumpCeiling
		if len(cur) >= cfg.DeepDepth {
			ceiling = cfg.DeepJumpCeiling
		}
		switch {
		case cur[last] <= prev[last]:
			return relViolation, "sibling number does not increase"
		case cur[last]-prev[last] > ceiling:
			return relViolation, "sibling number jumps too far"
		}
		return relValid, ""
	}
	shorter := min(len(prev), len(cur))
	if common > 0 {
		if common < shorter && cur[common] <= prev[common] {
			return relViolation, "branch number does not increase"
		}
		return relValid, ""
	}
	if cur[0] <= prev[0] {
		return relViolation, "top-level number does not increase"
	}
	return relValid, ""
}

func checkUnnumbered(cands []Candidate, cfg SequenceConfig, diags *Diagnostics) []Candidate {
	standard, ok := topLevelFontSize(cands)
	out := make([]Candidate, 0, len(cands))
	for i, c := range cands {
		if c.Numbered() {
			out = append(out, c)
			continue
		}
		if reason := unnumberedViolation(i, cands); reason != "" {
			diags.reject(StageUnnumbered, c, "%s", reason)
			continue
		}
		if ok && c.FontSize > 0 && !deepNumberedBefore(i, cands) &&
			math.Abs(c.FontSize-standard) > cfg.FontTolerance {
			diags.reject(StageUnnumbered, c, "font %.1f differs from top-level font %.1f", c.FontSize, standard)
			continue
		}
		out = append(out, c)
	}
	return out
}

// topLevelFontSize is the dominant font of depth-1 numbered entries and of
// unnumbered entries that no deeper numbered entry precedes.
func topLevelFontSize(cands []Candidate) (float64, bool) {
	var sizes []float64
	deepSeen := false
	for _, c := range cands {
		switch {
		case len(c.Path) > 1:
			deepSeen = true
		case len(c.Path) == 1 || !deepSeen:
			if c.FontSize > 0 {
				sizes = append(sizes, c.FontSize)
			}
		}
	}
	if len(sizes) == 0 {
		return 0, false
	}
	distinct := map[float64]bool{}
	sum := 0.0
	for _, s := range sizes {
		distinct[roundTenth(s)] = true
		sum += s
	}
	if len(distinct) > 2 {
		return modeSize(sizes), true
	}
	return roundTenth(sum / float64(len(sizes))), true
}

func deepNumberedBefore(i int, cands []Candidate) bool {
	for _, c := range cands[:i] {
		if len(c.Path) > 1 {
			return true
		}
	}
	return false
}

// unnumberedViolation checks that an unnumbered heading is top-level or the
// child of another unnumbered heading, and is not wedged between two
// numbered top-level entries.
func unnumberedViolation(i int, cands []Candidate) string {
	if i == 0 {
		return ""
	}
	prev := cands[i-1]
	switch {
	case len(prev.Path) > 1:
		return "cannot be a child of numbered entry " + prev.Path.String()
	case len(prev.Path) == 1:
		for _, next := range cands[i+1:] {
			if len(next.Path) == 1 {
				return "sits between numbered top-level entries"
			}
			if len(next.Path) > 1 {
				break
			}
		}
	}
	return ""
}

func checkJumps(cands []Candidate, _ SequenceConfig, diags *Diagnostics) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for i, c := range cands {
		if !c.Numbered() || len(out) == 0 {
			out = append(out, c)
			continue
		}
		prev := out[len(out)-1].Path
		if len(prev) > 0 {
			if unreasonableJump(prev, c.Path) {
				diags.reject(StageLookahead, c, "unreasonable jump from %s to %s", prev, c.Path)
				continue
			}
			if lookaheadConflict(prev, c.Path, cands[i+1:]) {
				diags.reject(StageLookahead, c, "%s leaves family %s while later entries continue it", c.Path, prev)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// unreasonableJump rejects a move to a later top-level branch that skips one,
// e.g. 3.1 right after 1.1. Backward moves never get here: checkOrdering has
// already compared every entry with its latest sibling.
func unreasonableJump(prev, cur Path) bool {
	return len(cur) >= 2 && len(prev) >= 2 && cur[0] > prev[0]+1
}

// lookaheadConflict rejects a return to a shallow number while later entries
// still continue the previous entry's family, e.g. 3 after 2.6.2.1 with 2.6.2.2 ahead.
func lookaheadConflict(prev, cur Path, future []Candidate) bool {
	if len(prev) < 3 || len(cur) != 1 {
		return false
	}
	for _, f := range future {
		if len(f.Path) >= 2 && sameFamily(prev, f.Path) {
			return true
		}
	}
	return false
}

func sameFamily(a, b Path) bool { return a.CommonPrefix(b) >= 2 }
