package outline

import (
	"regexp"
	"strconv"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9\-]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "/", "-", ".", "-").Replace(s)
	s = nonSlug.ReplaceAllString(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// destination builds a named-destination hint such as "sec-2-1-background".
// Titles with no ASCII letters fall back to the entry position.
func destination(c Candidate, index int) string {
	base := c.Title
	if c.Numbered() {
		base = c.Path.String() + " " + c.Title
	}
	if s := slugify(base); s != "" && !onlyDigitsAndDashes(s) {
		return "sec-" + s
	}
	if c.Numbered() {
		return "sec-" + slugify(c.Path.String())
	}
	return "sec-" + strconv.Itoa(index+1)
}

func onlyDigitsAndDashes(s string) bool {
	return strings.Trim(s, "0123456789-") == ""
}
