package pdfsource

import (
	"fmt"
	"os"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

// LedongthucSource reads fragments with github.com/ledongthuc/pdf, which copes
// with more font encodings than rsc.io/pdf.
type LedongthucSource struct {
	f   *os.File
	doc *pdflib.Reader
}

func OpenLedongthuc(path string) (*LedongthucSource, error) {
	f, doc, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &LedongthucSource{f: f, doc: doc}, nil
}

func (s *LedongthucSource) Close() error { return s.f.Close() }

func (s *LedongthucSource) PageCount() int { return s.doc.NumPage() }

func (s *LedongthucSource) PageFragments(page int) (frags []outline.TextFragment, err error) {
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
	return groupGlyphs(gs, page, ledongthucHeight(p.V)), nil
}

func ledongthucHeight(v pdflib.Value) float64 {
	for i := 0; i < 32 && v.Kind() == pdflib.Dict; i++ {
		box := v.Key("MediaBox")
		if box.Kind() == pdflib.Array && box.Len() == 4 {
			if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return DefaultPageHeight
}

// ReadOutline returns the bookmarks already embedded in the file, flattened in
// document order. The library does not resolve destinations, so Page is 0.
func ReadOutline(path string) (bms []outline.Bookmark, err error) {
	f, doc, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	defer func() {
		if r := recover(); r != nil {
			bms, err = nil, fmt.Errorf("read outline: %v", r)
		}
	}()
	var walk func(o pdflib.Outline, level int)
	walk = func(o pdflib.Outline, level int) {
		for _, c := range o.Child {
			bms = append(bms, outline.Bookmark{Level: level, Title: c.Title})
			if level < outline.MaxDepth {
				walk(c, level+1)
			}
		}
	}
	walk(doc.Outline(), 1)
	return bms, nil
}

// Open picks a source by extractor name: "glyphs" (default) or "ledongthuc".
func Open(path, extractor string) (Source, error) {
	switch extractor {
	case "", "glyphs", "rsc":
		src, err := OpenGlyphs(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "ledongthuc":
		src, err := OpenLedongthuc(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", extractor)
	}
}

// Source is a fragment source backed by an open file.
type Source interface {
	outline.FragmentSource
	Close() error
}
