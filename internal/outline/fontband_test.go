package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFontBands(t *testing.T) {
	cands := []Candidate{
		cand("1. A", 1, 16, 1),
		cand("1.1 A", 2, 13, 1, 1),
		cand("1.2 B", 2, 13, 1, 2),
		cand("2. B", 1, 16, 2),
		cand("2.1 C", 2, 13.4, 2, 1),
		cand("2.2 D", 2, 11.0, 2, 2),
	}
	out, bands, diags := FilterFontBands(cands, DefaultConfig().FontBand)

	assert.True(t, bands.Monotonic)
	assert.Equal(t, 16.0, bands.Levels[1].Primary)
	assert.Equal(t, 13.0, bands.Levels[2].Primary)
	assert.Equal(t, 4, bands.Levels[2].Count)

	assert.Equal(t, []string{"1. A", "1.1 A", "1.2 B", "2. B", "2.1 C"}, labels(out))
	require.Len(t, diags, 1)
	assert.Equal(t, "2.2 D", diags[0].Title)
	assert.Equal(t, StageFontBand, diags[0].Stage)
}

func TestFilterFontBandsPrimaryFromNumbered(t *testing.T) {
	// Three short unnumbered lines at 10pt must not outvote two numbered headings at 14pt.
	cands := []Candidate{
		cand("1. A", 1, 14, 1),
		cand("2. B", 1, 14, 2),
		cand("note", 1, 10),
		cand("memo", 1, 10),
		cand("misc", 1, 10),
	}
	out, bands, _ := FilterFontBands(cands, DefaultConfig().FontBand)
	assert.Equal(t, 14.0, bands.Levels[1].Primary)
	assert.Equal(t, []string{"1. A", "2. B"}, labels(out))
}

func TestFilterFontBandsNonMonotonic(t *testing.T) {
	cands := []Candidate{
		cand("1. A", 1, 12, 1),
		cand("2. B", 1, 12, 2),
		cand("2.1 C", 2, 14, 2, 1),
		cand("2.2 D", 2, 14, 2, 2),
		cand("2.2.1 E", 3, 12, 2, 2, 1),
	}
	out, bands, diags := FilterFontBands(cands, DefaultConfig().FontBand)
	assert.False(t, bands.Monotonic)
	assert.Equal(t, []string{"1. A", "2. B", "2.1 C", "2.2 D"}, labels(out))
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Reason, "suggests level 1")
}

func TestFilterFontBandsDisabled(t *testing.T) {
	cands := []Candidate{cand("1. A", 1, 16, 1), cand("2. B", 1, 9, 2)}
	cfg := DefaultConfig().FontBand
	cfg.Enabled = false
	out, bands, diags := FilterFontBands(cands, cfg)
	assert.Len(t, out, 2)
	assert.Empty(t, diags)
	assert.Equal(t, 2, bands.Levels[1].Count)
}

func TestPredict(t *testing.T) {
	b := Bands{Levels: map[int]LevelStats{
		1: {Primary: 18},
		2: {Primary: 14},
		3: {Primary: 12},
	}}
	assert.Equal(t, 1, b.Predict(20))
	assert.Equal(t, 2, b.Predict(13.5))
	assert.Equal(t, 3, b.Predict(9))
}
