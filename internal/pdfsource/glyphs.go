package pdfsource

import (
	"fmt"
	"os"

	rpdf "rsc.io/pdf"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

// GlyphSource reads fragments with rsc.io/pdf.
type GlyphSource struct {
	f   *os.File
	doc *rpdf.Reader
}

func OpenGlyphs(path string) (*GlyphSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	doc, err := rpdf.NewReader(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &GlyphSource{f: f, doc: doc}, nil
}

func (s *GlyphSource) Close() error { return s.f.Close() }

func (s *GlyphSource) PageCount() int { return s.doc.NumPage() }

// PageFragments returns the text lines of a 1-based page. The reader panics on
// some malformed content streams; that surfaces as an error.
func (s *GlyphSource) PageFragments(page int) (frags []outline.TextFragment, err error) {
	if page < 1 || page > s.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, fmt.Errorf("read page content: %v", r)
		}
	}()
	p := s.doc.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	texts := p.Content().Text
	gs := make([]glyph, 0, len(texts))
	for _, t := range texts {
		gs = append(gs, glyph{font: t.Font, size: t.FontSize, x: t.X, y: t.Y, w: t.W, s: t.S})
	}
	return groupGlyphs(gs, page, mediaHeight(p.V)), nil
}

// mediaHeight walks up the page tree for an inherited MediaBox.
func mediaHeight(v rpdf.Value) float64 {
	for i := 0; i < 32 && v.Kind() == rpdf.Dict; i++ {
		box := v.Key("MediaBox")
		if box.Kind() == rpdf.Array && box.Len() == 4 {
			if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return DefaultPageHeight
}
