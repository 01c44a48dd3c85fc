// Package pdfsource turns PDF pages into outline text fragments.
package pdfsource

import (
	"math"
	"strings"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

// DefaultPageHeight is used when a page carries no usable MediaBox (US Letter).
const DefaultPageHeight = 792.0

// glyph is one positioned text item as PDF readers report it: Y grows upward
// from the page bottom.
type glyph struct {
	font string
	size float64
	x, y float64
	w    float64
	s    string
}

const (
	spaceGap    = 0.15
	lineSlack   = 0.3
	maxGapRatio = 3.0
	sizeSlack   = 0.5
)

// groupGlyphs joins glyphs that share a baseline and font size into line
// fragments. A gap wider than spaceGap×size between neighbours becomes a space.
func groupGlyphs(gs []glyph, page int, height float64) []outline.TextFragment {
	var out []outline.TextFragment
	var (
		cur        strings.Builder
		run        glyph
		minX, endX float64
		open       bool
	)
	flush := func() {
		if !open {
			return
		}
		text := strings.Join(strings.Fields(cur.String()), " ")
		if text != "" {
			out = append(out, outline.TextFragment{
				Text:      text,
				FontSize:  math.Round(run.size*100) / 100,
				FontFlags: FlagsFromFontName(run.font),
				FontName:  run.font,
				Page:      page,
				BBox: outline.BBox{
					X: minX,
					Y: height - run.y - run.size,
					W: endX - minX,
					H: run.size,
				},
			})
		}
		cur.Reset()
		open = false
	}
	for _, g := range gs {
		if g.s == "" {
			continue
		}
		if open && sameLine(run, g, endX) {
			if gap := g.x - endX; gap > spaceGap*run.size {
				cur.WriteByte(' ')
			}
			cur.WriteString(g.s)
			endX = math.Max(endX, g.x+g.w)
			continue
		}
		flush()
		run, minX, endX, open = g, g.x, g.x+g.w, true
		cur.WriteString(g.s)
	}
	flush()
	return out
}

func sameLine(run, g glyph, endX float64) bool {
	if math.Abs(run.size-g.size) > sizeSlack {
		return false
	}
	if math.Abs(run.y-g.y) > lineSlack*run.size {
		return false
	}
	gap := g.x - endX
	return gap > -run.size && gap < maxGapRatio*run.size
}

// FlagsFromFontName guesses style flags from a PostScript font name such as
// "Helvetica-BoldOblique" or "ABCDEF+CourierNewPS-BoldMT".
func FlagsFromFontName(name string) outline.FontFlags {
	n := strings.ToLower(name)
	if i := strings.IndexByte(n, '+'); i >= 0 {
		n = n[i+1:]
	}
	var f outline.FontFlags
	for _, k := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(n, k) {
			f |= outline.FlagBold
			break
		}
	}
	if strings.Contains(n, "italic") || strings.Contains(n, "oblique") {
		f |= outline.FlagItalic
	}
	if strings.Contains(n, "mono") || strings.Contains(n, "courier") || strings.Contains(n, "consol") {
		f |= outline.FlagMono
	}
	if strings.Contains(n, "times") || (strings.Contains(n, "serif") && !strings.Contains(n, "sans")) || strings.Contains(n, "song") || strings.Contains(n, "ming") {
		f |= outline.FlagSerif
	}
	return f
}
