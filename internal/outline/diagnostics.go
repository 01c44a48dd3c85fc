package outline

import (
	"fmt"
	"sort"
)

type DiagnosticKind string

const (
	ClassificationAmbiguity    DiagnosticKind = "classification_ambiguity"
	ValidationRejection        DiagnosticKind = "validation_rejection"
	RefinementServiceError     DiagnosticKind = "refinement_service_error"
	OutlineConstraintViolation DiagnosticKind = "outline_constraint_violation"
)

// Stage names used in diagnostics and metrics labels.
const (
	StageClassify     = "classify"
	StageFilter       = "filter"
	StageAlign        = "align"
	StageFontBand     = "font_band"
	StageContinuity   = "sequence/continuity"
	StageParentChild  = "sequence/parent_child"
	StageOrdering     = "sequence/ordering"
	StageUnnumbered   = "sequence/unnumbered"
	StageLookahead    = "sequence/lookahead"
	StageNormalize    = "hierarchy/normalize"
	StageClamp        = "hierarchy/clamp"
	StageDedup        = "dedup"
	StageRefine       = "refine"
	StageEmit         = "emit"
	StageMatch        = "match"
	StageReadingOrder = "reading_order"
)

// Diagnostic records one non-fatal decision made by a stage.
type Diagnostic struct {
	Stage  string         `json:"stage"`
	Kind   DiagnosticKind `json:"kind"`
	Title  string         `json:"title,omitempty"`
	Page   int            `json:"page,omitempty"`
	Reason string         `json:"reason"`
}

type Diagnostics []Diagnostic

func (d *Diagnostics) add(stage string, kind DiagnosticKind, c Candidate, format string, args ...any) {
	*d = append(*d, Diagnostic{
		Stage:  stage,
		Kind:   kind,
		Title:  c.Label,
		Page:   c.Page,
		Reason: fmt.Sprintf(format, args...),
	})
}

func (d *Diagnostics) reject(stage string, c Candidate, format string, args ...any) {
	d.add(stage, ValidationRejection, c, format, args...)
}

// Rejections counts validation rejections per stage.
func (d Diagnostics) Rejections() map[string]int {
	out := map[string]int{}
	for _, x := range d {
		if x.Kind == ValidationRejection {
			out[x.Stage]++
		}
	}
	return out
}

func (d Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, x := range d {
		if x.Kind == kind {
			n++
		}
	}
	return n
}

// Stages returns the distinct stage names in sorted order.
func (d Diagnostics) Stages() []string {
	seen := map[string]bool{}
	var out []string
	for _, x := range d {
		if !seen[x.Stage] {
			seen[x.Stage] = true
			out = append(out, x.Stage)
		}
	}
	sort.Strings(out)
	return out
}
