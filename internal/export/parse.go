package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

var txtInfoRe = regexp.MustCompile(`\s*\((?:层级|level)\s*(\d+)(?:\s*[,，]\s*(?:页面|page)\s*(\d+))?\)\s*$`)

// ParseBookmarks reads a bookmark list written in json, txt or csv. Missing
// levels and pages default to 1.
func ParseBookmarks(r io.Reader, format string) ([]outline.Bookmark, error) {
	switch strings.ToLower(format) {
	case "json":
		return parseJSON(r)
	case "txt", "text":
		return parseText(r)
	case "csv":
		return parseCSV(r)
	default:
		return nil, fmt.Errorf("unsupported bookmark format %q", format)
	}
}

func parseJSON(r io.Reader) ([]outline.Bookmark, error) {
	var raw []struct {
		Title string `json:"title"`
		Level int    `json:"level"`
		Page  int    `json:"page"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bookmarks: %w", err)
	}
	out := make([]outline.Bookmark, 0, len(raw))
	for _, b := range raw {
		if strings.TrimSpace(b.Title) == "" {
			continue
		}
		out = append(out, outline.Bookmark{Title: b.Title, Level: atLeastOne(b.Level), Page: atLeastOne(b.Page)})
	}
	return out, nil
}

func parseText(r io.Reader) ([]outline.Bookmark, error) {
	var out []outline.Bookmark
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == txtHeader || strings.HasPrefix(trimmed, "=") {
			continue
		}
		level := 1
		for strings.HasPrefix(line, "  ") {
			level++
			line = line[2:]
		}
		title, page := strings.TrimSpace(line), 1
		if m := txtInfoRe.FindStringSubmatch(title); m != nil {
			if l, err := strconv.Atoi(m[1]); err == nil && l > 0 {
				level = l
			}
			page, _ = strconv.Atoi(m[2])
			title = strings.TrimSpace(title[:len(title)-len(m[0])])
		}
		if title == "" {
			continue
		}
		out = append(out, outline.Bookmark{Title: title, Level: level, Page: atLeastOne(page)})
	}
	return out, sc.Err()
}

func parseCSV(r io.Reader) ([]outline.Bookmark, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	ti, ok := col["title"]
	if !ok {
		return nil, errors.New("csv has no title column")
	}
	field := func(rec []string, name string) int {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return 1
		}
		n, _ := strconv.Atoi(strings.TrimSpace(rec[i]))
		return atLeastOne(n)
	}
	var out []outline.Bookmark
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if ti >= len(rec) || strings.TrimSpace(rec[ti]) == "" {
			continue
		}
		out = append(out, outline.Bookmark{Title: rec[ti], Level: field(rec, "level"), Page: field(rec, "page")})
	}
	return out, nil
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
