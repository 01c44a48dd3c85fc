package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numbered builds decimal candidates from dotted numbers, all at one font size.
func numbered(nums ...string) []Candidate {
	out := make([]Candidate, len(nums))
	for i, n := range nums {
		p := parsePath(n)
		out[i] = cand(n+" Title", len(p), 12, p...)
	}
	return out
}

func paths(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		if c.Numbered() {
			out[i] = c.Path.String()
		} else {
			out[i] = c.Label
		}
	}
	return out
}

func TestValidateSequence(t *testing.T) {
	cfg := DefaultConfig().Sequence
	tests := []struct {
		name  string
		in    []Candidate
		want  []string
		stage string
	}{
		{
			name: "well formed",
			in:   numbered("1", "1.1", "1.2", "2", "2.1", "3"),
			want: []string{"1", "1.1", "1.2", "2", "2.1", "3"},
		},
		{
			name:  "top level outside run",
			in:    numbered("1", "2", "3", "5"),
			want:  []string{"1", "2", "3"},
			stage: StageContinuity,
		},
		{
			name: "run without one",
			in:   numbered("4", "5", "6"),
			want: []string{"4", "5", "6"},
		},
		{
			name:  "run too short",
			in:    numbered("7", "20"),
			want:  []string{},
			stage: StageContinuity,
		},
		{
			name:  "orphan child",
			in:    numbered("1", "2.1"),
			want:  []string{"1"},
			stage: StageParentChild,
		},
		{
			name:  "missing parent",
			in:    numbered("1", "2", "3", "2.4.1"),
			want:  []string{"1", "2", "3"},
			stage: StageParentChild,
		},
		{
			name:  "sibling goes backwards",
			in:    numbered("1", "2", "2.1", "2.4", "2.2"),
			want:  []string{"1", "2", "2.1", "2.4"},
			stage: StageOrdering,
		},
		{
			name:  "sibling jumps too far",
			in:    numbered("1", "1.1", "1.15", "2"),
			want:  []string{"1", "1.1", "2"},
			stage: StageOrdering,
		},
		{
			name: "deep sibling may jump up to the deep ceiling and repeat once",
			in: numbered("1", "1.1", "1.1.1", "1.1.1.1", "1.1.1.1.1",
				"1.1.1.1.30", "1.1.1.1.30", "1.1.1.1.30", "1.1.1.1.90", "1.2", "1.14"),
			want:  []string{"1", "1.1", "1.1.1", "1.1.1.1", "1.1.1.1.1", "1.1.1.1.30", "1.1.1.1.30", "1.2"},
			stage: StageOrdering,
		},
		{
			name:  "shallow sibling may not repeat",
			in:    numbered("1", "1.1", "1.1", "2"),
			want:  []string{"1", "1.1", "2"},
			stage: StageOrdering,
		},
		{
			name:  "top level after deeper entry goes backwards",
			in:    numbered("1", "2", "2.1", "1"),
			want:  []string{"1", "2", "2.1"},
			stage: StageOrdering,
		},
		{
			name:  "branch skips a top-level number",
			in:    numbered("1", "2", "3", "1.1", "3.1"),
			want:  []string{"1", "2", "3", "1.1"},
			stage: StageLookahead,
		},
		{
			name:  "return to top while family continues",
			in:    numbered("1", "2", "2.1", "2.1.1", "3", "2.1.2"),
			want:  []string{"1", "2", "2.1", "2.1.1", "2.1.2"},
			stage: StageLookahead,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diags := ValidateSequence(tt.in, cfg)
			assert.Equal(t, tt.want, paths(out))
			if tt.stage == "" {
				assert.Empty(t, diags)
				return
			}
			require.NotEmpty(t, diags)
			assert.Equal(t, tt.stage, diags[0].Stage)
			assert.Equal(t, len(tt.in)-len(tt.want), len(diags))
		})
	}
}

func TestValidateSequenceUnnumbered(t *testing.T) {
	cfg := DefaultConfig().Sequence

	t.Run("between numbered top levels", func(t *testing.T) {
		in := []Candidate{cand("1. A", 1, 12, 1), cand("Interlude", 1, 12), cand("2. B", 1, 12, 2)}
		out, diags := ValidateSequence(in, cfg)
		assert.Equal(t, []string{"1", "2"}, paths(out))
		require.Len(t, diags, 1)
		assert.Equal(t, StageUnnumbered, diags[0].Stage)
	})

	t.Run("child of numbered entry", func(t *testing.T) {
		in := []Candidate{cand("1. A", 1, 12, 1), cand("1.1 B", 2, 12, 1, 1), cand("Notes", 1, 12)}
		out, _ := ValidateSequence(in, cfg)
		assert.Equal(t, []string{"1", "1.1"}, paths(out))
	})

	t.Run("trailing top level", func(t *testing.T) {
		in := []Candidate{cand("Preface", 1, 12), cand("1. A", 1, 12, 1), cand("Appendix", 1, 12)}
		out, diags := ValidateSequence(in, cfg)
		assert.Equal(t, []string{"Preface", "1", "Appendix"}, paths(out))
		assert.Empty(t, diags)
	})

	t.Run("font off the top level", func(t *testing.T) {
		// Two distinct sizes: the standard is their mean, 12.3.
		in := []Candidate{cand("Preface", 1, 12), cand("1. A", 1, 12, 1), cand("2. B", 1, 12, 2), cand("Aside", 1, 13)}
		out, diags := ValidateSequence(in, cfg)
		assert.Equal(t, []string{"Preface", "1", "2"}, paths(out))
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Reason, "differs from top-level font")
	})
}

func TestUnreasonableJump(t *testing.T) {
	assert.True(t, unreasonableJump(Path{1, 1}, Path{3, 1}))
	assert.False(t, unreasonableJump(Path{1, 1}, Path{2, 1}))
	assert.False(t, unreasonableJump(Path{1}, Path{3, 1}))
	assert.False(t, unreasonableJump(Path{2, 4}, Path{1}))
}

func TestValidTopLevels(t *testing.T) {
	assert.Equal(t, map[int]bool{1: true, 2: true}, validTopLevels([]int{1, 2, 4, 5, 6, 7}, 3))
	assert.Equal(t, map[int]bool{4: true, 5: true, 6: true, 7: true}, validTopLevels([]int{2, 4, 5, 6, 7, 9}, 3))
	assert.Empty(t, validTopLevels([]int{3, 4, 9}, 3))
}
