package outline

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const cnDigits = `[一二三四五六七八九十百千零〇两\d]+`

// Rejected outright: page numbers, page labels and table-of-contents boilerplate.
var (
	pageNumberRe  = regexp.MustCompile(`^(?:\d+|[-–—]\s*\d+\s*[-–—]|\d+\s*/\s*\d+)$`)
	pageLabelRe   = regexp.MustCompile(`(?i)^(?:[第共]?\s*\d+\s*页|页\s*\d+|page\s+\d+(?:\s+of\s+\d+)?)$`)
	boilerplateRe = regexp.MustCompile(`(?i)^(?:目\s*录|contents?|table\s+of\s+contents|index)$`)
)

// Trailing page references: "Intro ....... 12", "Intro … 12", "Intro 12".
var (
	leaderRefRe  = regexp.MustCompile(`^(.*?\S)\s*\.{3,}\s*(\d{1,5})$`)
	spaceRefRe   = regexp.MustCompile(`^(.*\S)\s+(\d{1,5})$`)
	refKeywordRe = regexp.MustCompile(`(?i)(?:chapter|section|part|appendix|vol\.?|volume|no\.?|page|第)$`)
)

// Numbering dialects, tried in this order.
var (
	chapterRe          = regexp.MustCompile(`^第\s*` + cnDigits + `\s*章\s*(.*)$`)
	chapterEnRe        = regexp.MustCompile(`(?i)^chapter\s+(?:\d+|[ivxlcdm]+)\b[.:]?\s*(.*)$`)
	partRe             = regexp.MustCompile(`^第\s*` + cnDigits + `\s*(?:部分|篇)\s*(.*)$`)
	partEnRe           = regexp.MustCompile(`(?i)^part\s+(?:\d+|[ivxlcdm]+|[a-z])\b[.:]?\s*(.*)$`)
	sectionRe          = regexp.MustCompile(`^第\s*` + cnDigits + `\s*节\s*(.*)$`)
	sectionEnRe        = regexp.MustCompile(`(?i)^section\s+\d+\b[.:]?\s*(.*)$`)
	decimalRe          = regexp.MustCompile(`^(\d{1,4}(?:\.\d{1,4}){0,7})(\.?)\s+(\S.*)$`)
	digitCommaRe       = regexp.MustCompile(`^(\d{1,4})、\s*(.+)$`)
	chineseNumRe       = regexp.MustCompile(`^[一二三四五六七八九十]+[、.．]\s*(.+)$`)
	romanRe            = regexp.MustCompile(`^([IVXLCDM]+)[、.]\s*(.+)$`)
	validRomanRe       = regexp.MustCompile(`^M{0,3}(?:CM|CD|D?C{0,3})(?:XC|XL|L?X{0,3})(?:IX|IV|V?I{0,3})$`)
	letterUpperRe      = regexp.MustCompile(`^[A-Z][.．]\s*(.+)$`)
	letterLowerParenRe = regexp.MustCompile(`^\(?[a-z]\)\s*(.+)$`)
	parenNumberRe      = regexp.MustCompile(`^[(（]\s*[一二三四五六七八九十\d]+\s*[)）]\s*(.+)$`)
	bracketedRe        = regexp.MustCompile(`^【([^】]+)】\s*(.*)$`)
	titlePunctRe       = regexp.MustCompile(`[,.;:!?，。；：？！、]`)
)

const (
	minHeadingRunes  = 3
	maxFallbackRunes = 15
)

// Heading is the text-only classification of a fragment.
type Heading struct {
	Kind    NumberingKind
	Path    Path
	Level   int
	Label   string
	Title   string
	PageRef int
	// Ambiguous is set when the text fit more than one reading and the permissive one was taken.
	Ambiguous string
}

type dialect struct {
	re    *regexp.Regexp
	kind  NumberingKind
	level int
}

var markerDialects = []dialect{
	{chapterRe, KindChapter, 1},
	{chapterEnRe, KindChapter, 1},
	{partRe, KindPart, 1},
	{partEnRe, KindPart, 1},
	{sectionRe, KindSection, 2},
	{sectionEnRe, KindSection, 2},
}

var listDialects = []dialect{
	{chineseNumRe, KindChineseNumeral, 1},
	{letterUpperRe, KindLetterUpper, 2},
	{letterLowerParenRe, KindLetterLowerParen, 3},
	{parenNumberRe, KindParenNumber, 2},
}

// Classify decides whether text reads as a heading. It depends on nothing but text.
func Classify(text string) (Heading, bool) {
	label := normalizeDotLeaders(text)
	if rejectedText(label) {
		return Heading{}, false
	}
	label, ref := stripPageRef(label)
	if rejectedText(label) {
		return Heading{}, false
	}
	h, ok := classifyLabel(label)
	if !ok {
		return Heading{}, false
	}
	h.Label = label
	h.PageRef = ref
	if h.Title == "" {
		h.Title = label
	}
	return h, true
}

func rejectedText(s string) bool {
	if utf8.RuneCountInString(s) < minHeadingRunes {
		return true
	}
	return pageNumberRe.MatchString(s) || pageLabelRe.MatchString(s) || boilerplateRe.MatchString(s)
}

func stripPageRef(s string) (string, int) {
	if m := leaderRefRe.FindStringSubmatch(s); m != nil {
		p, _ := strconv.Atoi(m[2])
		return strings.TrimSpace(m[1]), p
	}
	if m := spaceRefRe.FindStringSubmatch(s); m != nil {
		rest := strings.TrimSpace(m[1])
		if refKeywordRe.MatchString(rest) {
			return s, 0
		}
		p, _ := strconv.Atoi(m[2])
		return rest, p
	}
	return s, 0
}

func classifyLabel(s string) (Heading, bool) {
	for _, d := range markerDialects {
		if m := d.re.FindStringSubmatch(s); m != nil {
			return Heading{Kind: d.kind, Level: d.level, Title: strings.TrimSpace(m[1])}, true
		}
	}
	if m := decimalRe.FindStringSubmatch(s); m != nil {
		path := parsePath(m[1])
		// "3 apples" is body text; a lone number needs its trailing dot.
		if len(path) > 1 || m[2] == "." {
			return Heading{Kind: KindDecimal, Path: path, Level: len(path), Title: strings.TrimSpace(m[3])}, true
		}
	}
	if m := digitCommaRe.FindStringSubmatch(s); m != nil {
		return Heading{Kind: KindDigitComma, Path: parsePath(m[1]), Level: 1, Title: strings.TrimSpace(m[2])}, true
	}
	if m := romanRe.FindStringSubmatch(s); m != nil && validRomanRe.MatchString(m[1]) {
		switch {
		case len(m[1]) > 1:
			return Heading{Kind: KindRoman, Level: 1, Title: strings.TrimSpace(m[2])}, true
		case strings.ContainsAny(m[1], "IVX"):
			return Heading{Kind: KindRoman, Level: 1, Title: strings.TrimSpace(m[2]),
				Ambiguous: "single letter " + m[1] + " read as a roman numeral"}, true
		}
		// C. D. L. M. fall through to lettered headings.
	}
	for _, d := range listDialects {
		if m := d.re.FindStringSubmatch(s); m != nil {
			return Heading{Kind: d.kind, Level: d.level, Title: strings.TrimSpace(m[1])}, true
		}
	}
	if m := bracketedRe.FindStringSubmatch(s); m != nil {
		title := strings.TrimSpace(m[1] + " " + m[2])
		return Heading{Kind: KindBracketed, Level: 1, Title: title}, true
	}
	if utf8.RuneCountInString(s) <= maxFallbackRunes && !titlePunctRe.MatchString(s) {
		return Heading{Kind: KindNone, Level: 1, Title: s, Ambiguous: "short unnumbered text taken as a level-1 candidate"}, true
	}
	return Heading{}, false
}

func parsePath(num string) Path {
	parts := strings.Split(num, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil
		}
		p = append(p, n)
	}
	return p
}

// normalizeDotLeaders turns bullet and ellipsis leaders into plain dots and collapses whitespace.
func normalizeDotLeaders(s string) string {
	s = strings.ReplaceAll(s, "…", "...")
	s = strings.ReplaceAll(s, "⋯", "...")
	s = strings.ReplaceAll(s, "•", ".")
	s = strings.ReplaceAll(s, "·", ".")
	s = strings.ReplaceAll(s, "‧", ".")
	s = strings.ReplaceAll(s, " . . . ", " ... ")
	return strings.Join(strings.Fields(s), " ")
}

// NewCandidate classifies a fragment. The target page defaults to the source page.
func NewCandidate(f TextFragment) (Candidate, Heading, bool) {
	h, ok := Classify(f.Text)
	if !ok {
		return Candidate{}, h, false
	}
	return candidateFrom(f, h), h, true
}

func candidateFrom(f TextFragment, h Heading) Candidate {
	target := f.Page
	if h.PageRef > 0 {
		target = h.PageRef
	}
	return Candidate{
		TextFragment: f,
		Kind:         h.Kind,
		Path:         h.Path,
		Level:        h.Level,
		TargetPage:   target,
		Label:        h.Label,
		Title:        h.Title,
	}
}

// ClassifyAll runs the classifier over every fragment. Fragments matching an
// include entry become level-1 candidates even when the classifier rejects them.
func ClassifyAll(frags []TextFragment, cfg FilterConfig) ([]Candidate, Diagnostics) {
	var (
		out   []Candidate
		diags Diagnostics
	)
	include := foldAll(cfg.Include)
	for _, f := range frags {
		c, h, ok := NewCandidate(f)
		if !ok {
			if len(include) == 0 || !containsAny(foldTitle(f.Text), include) {
				continue
			}
			label, ref := stripPageRef(normalizeDotLeaders(f.Text))
			if label == "" {
				continue
			}
			c = candidateFrom(f, Heading{Kind: KindNone, Level: 1, Label: label, Title: label, PageRef: ref})
			diags.add(StageClassify, ClassificationAmbiguity, c, "forced by include list")
			out = append(out, c)
			continue
		}
		if h.Ambiguous != "" {
			diags.add(StageClassify, ClassificationAmbiguity, c, "%s", h.Ambiguous)
		}
		out = append(out, c)
	}
	return out, diags
}
