package outline

import (
	"math"
	"sort"
)

// LevelStats summarizes the font sizes seen at one nominal level.
type LevelStats struct {
	Level   int     `json:"level"`
	Primary float64 `json:"primary"`
	Mean    float64 `json:"mean"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"std_dev"`
	Count   int     `json:"count"`
}

// Bands holds per-level statistics and whether sizes shrink as levels deepen.
type Bands struct {
	Levels    map[int]LevelStats `json:"levels"`
	Monotonic bool               `json:"monotonic"`
}

func roundTenth(f float64) float64 { return math.Round(f*10) / 10 }

// AnalyzeFonts groups candidates by nominal level. A level's primary size is
// its most frequent rounded size, taken from numbered candidates when the level
// has any so that short body lines cannot outvote real headings.
func AnalyzeFonts(cands []Candidate, cfg FontBandConfig) Bands {
	all := map[int][]float64{}
	numbered := map[int][]float64{}
	for _, c := range cands {
		if c.FontSize <= 0 {
			continue
		}
		all[c.Level] = append(all[c.Level], c.FontSize)
		if c.Kind != KindNone {
			numbered[c.Level] = append(numbered[c.Level], c.FontSize)
		}
	}
	b := Bands{Levels: map[int]LevelStats{}, Monotonic: true}
	for level, sizes := range all {
		st := sizeStats(sizes)
		st.Level = level
		if n := numbered[level]; len(n) > 0 {
			st.Primary = modeSize(n)
		}
		b.Levels[level] = st
	}
	levels := b.sortedLevels()
	for i := 1; i < len(levels); i++ {
		upper, lower := b.Levels[levels[i-1]], b.Levels[levels[i]]
		if upper.Primary < lower.Primary-cfg.MonotonicSlack {
			b.Monotonic = false
		}
	}
	return b
}

func (b Bands) sortedLevels() []int {
	levels := make([]int, 0, len(b.Levels))
	for l := range b.Levels {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// Predict returns the level whose primary size is nearest to size.
func (b Bands) Predict(size float64) int {
	best, dist := 0, math.Inf(1)
	for _, l := range b.sortedLevels() {
		if d := math.Abs(b.Levels[l].Primary - size); d < dist {
			best, dist = l, d
		}
	}
	return best
}

func sizeStats(sizes []float64) LevelStats {
	st := LevelStats{Count: len(sizes), Min: sizes[0], Max: sizes[0], Primary: modeSize(sizes)}
	sum := 0.0
	for _, s := range sizes {
		sum += s
		st.Min = math.Min(st.Min, s)
		st.Max = math.Max(st.Max, s)
	}
	st.Mean = sum / float64(len(sizes))
	if len(sizes) > 1 {
		v := 0.0
		for _, s := range sizes {
			v += (s - st.Mean) * (s - st.Mean)
		}
		st.StdDev = math.Sqrt(v / float64(len(sizes)-1))
	}
	return st
}

// modeSize returns the most frequent size rounded to 0.1; ties go to the first seen.
func modeSize(sizes []float64) float64 {
	counts := map[float64]int{}
	var order []float64
	for _, s := range sizes {
		r := roundTenth(s)
		if counts[r] == 0 {
			order = append(order, r)
		}
		counts[r]++
	}
	best, n := 0.0, 0
	for _, r := range order {
		if counts[r] > n {
			best, n = r, counts[r]
		}
	}
	return best
}

// FilterFontBands drops candidates whose size is off their level's band, and,
// when the level sizes are out of order, those whose size points more than one
// level away from their nominal level.
func FilterFontBands(cands []Candidate, cfg FontBandConfig) ([]Candidate, Bands, Diagnostics) {
	var diags Diagnostics
	bands := AnalyzeFonts(cands, cfg)
	if !cfg.Enabled {
		return cands, bands, diags
	}
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		st, ok := bands.Levels[c.Level]
		if !ok || c.FontSize <= 0 {
			out = append(out, c)
			continue
		}
		if math.Abs(c.FontSize-st.Primary) > cfg.Tolerance {
			diags.reject(StageFontBand, c, "font %.1f outside level %d band %.1f±%.1f", c.FontSize, c.Level, st.Primary, cfg.Tolerance)
			continue
		}
		if !bands.Monotonic {
			if p := bands.Predict(c.FontSize); abs(p-c.Level) > 1 {
				diags.reject(StageFontBand, c, "font %.1f suggests level %d, not %d", c.FontSize, p, c.Level)
				continue
			}
		}
		out = append(out, c)
	}
	return out, bands, diags
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
