package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func levelsOf(cs []Candidate) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Level
	}
	return out
}

func TestReorder(t *testing.T) {
	in := []Candidate{
		cand("2. B", 1, 12, 2),
		cand("Appendix", 1, 12),
		cand("1.1 A1", 2, 12, 1, 1),
		cand("2.1 B1", 2, 12, 2, 1),
		cand("1. A", 1, 12, 1),
		cand("Glossary", 1, 12),
	}
	out := Reorder(in)
	assert.Equal(t, []string{"1", "1.1", "2", "2.1", "Appendix", "Glossary"}, paths(out))

	again := Reorder(out)
	assert.Equal(t, paths(out), paths(again))
}

func TestReorderKeepsDuplicatesInEncounterOrder(t *testing.T) {
	a := cand("1. First", 1, 12, 1)
	b := cand("1. Second", 1, 12, 1)
	out := Reorder([]Candidate{b, cand("1.1 Child", 2, 12, 1, 1), a})
	assert.Equal(t, []string{"1. Second", "1. First", "1.1 Child"}, labels(out))
}

func TestClampLevels(t *testing.T) {
	in := []Candidate{
		cand("a", 2, 12),
		cand("b", 4, 12),
		cand("c", 1, 12),
		cand("d", 3, 12),
		cand("e", 5, 12),
	}
	out, diags := ClampLevels(in)
	assert.Equal(t, []int{1, 2, 1, 3, 4}, levelsOf(out))
	assert.True(t, LegalLevels(levelsOf(out)))
	assert.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, OutlineConstraintViolation, d.Kind)
	}

	again, diags := ClampLevels(out)
	assert.Equal(t, levelsOf(out), levelsOf(again))
	assert.Empty(t, diags)
}

func TestLegalLevels(t *testing.T) {
	tests := []struct {
		levels []int
		want   bool
	}{
		{nil, true},
		{[]int{1, 2, 3}, true},
		{[]int{1, 2, 1, 3}, true},
		{[]int{2}, false},
		{[]int{1, 3}, false},
		{[]int{0}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LegalLevels(tt.levels), "%v", tt.levels)
	}
}

func TestNormalize(t *testing.T) {
	in := []Candidate{
		cand("Preface", 1, 12),
		cand("Deep note", 3, 12),
		cand("1. A", 4, 12, 1),
		cand("1.1.1 A11", 1, 12, 1, 1, 1),
	}
	out, diags := Normalize(in)
	assert.Equal(t, []int{1, 2, 1, 3}, levelsOf(out))
	assert.Len(t, diags, 1)
	assert.Equal(t, StageNormalize, diags[0].Stage)
}

func TestLimitDepth(t *testing.T) {
	in := []Candidate{cand("1. A", 1, 12, 1), cand("1.1 B", 2, 12, 1, 1), cand("1.1.1 C", 3, 12, 1, 1, 1)}
	out, diags := LimitDepth(in, 2)
	assert.Equal(t, []string{"1", "1.1"}, paths(out))
	assert.Len(t, diags, 1)

	out, _ = LimitDepth(in, MaxDepth)
	assert.Len(t, out, 3)
}

func TestBuildHierarchy(t *testing.T) {
	in := []Candidate{
		cand("2. B", 1, 12, 2),
		cand("1. A", 1, 12, 1),
		cand("1.1 A1", 2, 12, 1, 1),
		cand("Index", 3, 12),
	}
	out, _ := BuildHierarchy(in, MaxDepth)
	assert.Equal(t, []string{"1", "1.1", "2", "Index"}, paths(out))
	assert.True(t, LegalLevels(levelsOf(out)))
}
