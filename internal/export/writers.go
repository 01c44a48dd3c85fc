// Package export writes and reads bookmark lists.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

const (
	txtHeader = "PDF书签列表"
	txtRule   = "=================================================="
)

// Formats lists the names accepted by NewWriter.
var Formats = []string{"json", "txt", "csv", "md"}

// NewWriter returns the outline writer for format.
func NewWriter(format string, w io.Writer) (outline.Writer, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONWriter{w: w}, nil
	case "txt", "text":
		return &TextWriter{w: w}, nil
	case "csv":
		return &CSVWriter{w: w}, nil
	case "md", "markdown":
		return &MarkdownWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// FormatFromPath guesses a format from a file extension, defaulting to json.
func FormatFromPath(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "json"
	}
	switch ext := strings.ToLower(path[i+1:]); ext {
	case "txt", "csv", "md", "json":
		return ext
	case "markdown":
		return "md"
	}
	return "json"
}

type JSONWriter struct{ w io.Writer }

func (j *JSONWriter) WriteOutline(bms []outline.Bookmark) error {
	if bms == nil {
		bms = []outline.Bookmark{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(bms)
}

type TextWriter struct{ w io.Writer }

func (t *TextWriter) WriteOutline(bms []outline.Bookmark) error {
	bw := bufio.NewWriter(t.w)
	fmt.Fprintf(bw, "%s\n%s\n\n", txtHeader, txtRule)
	for _, b := range bms {
		if b.Page < 1 {
			fmt.Fprintf(bw, "%s%s (层级 %d)\n", indent(b.Level), b.Title, b.Level)
			continue
		}
		fmt.Fprintf(bw, "%s%s (层级 %d, 页面 %d)\n", indent(b.Level), b.Title, b.Level, b.Page)
	}
	return bw.Flush()
}

type CSVWriter struct{ w io.Writer }

func (c *CSVWriter) WriteOutline(bms []outline.Bookmark) error {
	cw := csv.NewWriter(c.w)
	if err := cw.Write([]string{"title", "level", "page"}); err != nil {
		return err
	}
	for _, b := range bms {
		if err := cw.Write([]string{b.Title, strconv.Itoa(b.Level), pageField(b.Page)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarkdownWriter renders a nested list whose items link to their destination.
type MarkdownWriter struct{ w io.Writer }

func (m *MarkdownWriter) WriteOutline(bms []outline.Bookmark) error {
	bw := bufio.NewWriter(m.w)
	bw.WriteString("# Outline\n\n")
	for _, b := range bms {
		item := escapeMarkdown(b.Title)
		if b.Dest != "" {
			item = fmt.Sprintf("[%s](#%s)", item, b.Dest)
		}
		if b.Page > 0 {
			item += fmt.Sprintf(" (p. %d)", b.Page)
		}
		fmt.Fprintf(bw, "%s- %s\n", indent(b.Level), item)
	}
	return bw.Flush()
}

// pageField leaves unknown pages (0) empty.
func pageField(page int) string {
	if page < 1 {
		return ""
	}
	return strconv.Itoa(page)
}

func indent(level int) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("  ", level-1)
}

var mdEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`, "`", "\\`")

func escapeMarkdown(s string) string { return mdEscaper.Replace(s) }
