package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	dateRe       = regexp.MustCompile(`\d+年\d+月|\b\d{4}-\d{2}-\d{2}\b`)
	percentRe    = regexp.MustCompile(`\d+(?:\.\d+)?\s*[%％]`)
	urlRe        = regexp.MustCompile(`(?i)https?://|www\.|@`)
	nonTitleRes  = []*regexp.Regexp{
		regexp.MustCompile(`^第\s*\d+\s*页`),
		regexp.MustCompile(`^共\s*\d+\s*页`),
		regexp.MustCompile(`^页码[:：]\s*\d+`),
		regexp.MustCompile(`^[.\-_]{3,}`),
	}
	numericStartRe = regexp.MustCompile(`^\d`)
)

// FilterContent drops candidates that are numbered like headings but read like
// body content: dates, percentages, URLs, over-long lines and odd prefixes.
func FilterContent(cands []Candidate, cfg FilterConfig) ([]Candidate, Diagnostics) {
	var diags Diagnostics
	if !cfg.Enabled {
		return cands, diags
	}
	exclude := foldAll(cfg.Exclude)
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if reason := contentReject(c, cfg, exclude); reason != "" {
			diags.reject(StageFilter, c, "%s", reason)
			continue
		}
		out = append(out, c)
	}
	return out, diags
}

func contentReject(c Candidate, cfg FilterConfig, exclude []string) string {
	label := c.Label
	if len(exclude) > 0 && containsAny(foldTitle(label), exclude) {
		return "matches exclude list"
	}
	if cfg.RequireNumericStart && !numericStartRe.MatchString(label) {
		return "does not start with a number"
	}
	if r, _ := utf8.DecodeRuneInString(label); !titleStartRune(r) {
		return "starts with a non-title character"
	}
	if cfg.MaxTitleRunes > 0 && utf8.RuneCountInString(label) > cfg.MaxTitleRunes {
		return "too long for a heading"
	}
	if dateRe.MatchString(label) {
		return "contains a date"
	}
	if percentRe.MatchString(label) {
		return "contains a percentage"
	}
	for _, re := range nonTitleRes {
		if re.MatchString(label) {
			return "page or leader decoration"
		}
	}
	if ObviouslyNotTitle(label) {
		return "punctuation or link content"
	}
	if c.FontSize > 0 {
		if cfg.MinFontSize > 0 && c.FontSize < cfg.MinFontSize {
			return "font too small"
		}
		if cfg.MaxFontSize > 0 && c.FontSize > cfg.MaxFontSize {
			return "font too large"
		}
	}
	return ""
}

func titleStartRune(r rune) bool {
	switch r {
	case '(', '（', '【':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Han, r)
}

// ObviouslyNotTitle reports text that no heading looks like: heavy punctuation,
// links or e-mail addresses, or punctuation only.
func ObviouslyNotTitle(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	if urlRe.MatchString(s) {
		return true
	}
	punct, other := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			punct++
		case !unicode.IsSpace(r):
			other++
		}
	}
	if other == 0 {
		return true
	}
	// Decimal numbering dots do not count.
	if m := decimalRe.FindStringSubmatch(s); m != nil {
		punct -= strings.Count(m[1], ".") + len(m[2])
	}
	return punct > 4
}
