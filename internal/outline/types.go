package outline

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDepth bounds numeric paths and the reorder traversal.
const MaxDepth = 8

// BBox is a fragment's box in page units. Y is measured from the top of the page.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type FontFlags uint8

const (
	FlagBold FontFlags = 1 << iota
	FlagItalic
	FlagMono
	FlagSerif
)

func (f FontFlags) Has(flag FontFlags) bool { return f&flag != 0 }

// TextFragment is one run of text as produced by a fragment source. Pages are 1-based.
type TextFragment struct {
	Text      string    `json:"text"`
	FontSize  float64   `json:"font_size"`
	FontFlags FontFlags `json:"font_flags,omitempty"`
	BBox      BBox      `json:"bbox"`
	Page      int       `json:"page"`
	FontName  string    `json:"font_name,omitempty"`
}

// NumberingKind is the numbering dialect a heading was recognized in.
type NumberingKind int

const (
	KindNone NumberingKind = iota
	KindChapter
	KindSection
	KindPart
	KindDecimal
	KindChineseNumeral
	KindRoman
	KindLetterUpper
	KindLetterLowerParen
	KindParenNumber
	KindBracketed
	KindDigitComma
)

var kindNames = [...]string{
	KindNone:             "none",
	KindChapter:          "chapter",
	KindSection:          "section",
	KindPart:             "part",
	KindDecimal:          "decimal",
	KindChineseNumeral:   "chinese_numeral",
	KindRoman:            "roman",
	KindLetterUpper:      "letter_upper",
	KindLetterLowerParen: "letter_lower_paren",
	KindParenNumber:      "paren_number",
	KindBracketed:        "bracketed",
	KindDigitComma:       "digit_comma",
}

func (k NumberingKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

func (k NumberingKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *NumberingKind) UnmarshalText(b []byte) error {
	for i, n := range kindNames {
		if n == string(b) {
			*k = NumberingKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown numbering kind %q", string(b))
}

// Numbered reports whether headings of this kind carry a numeric path.
func (k NumberingKind) Numbered() bool { return k == KindDecimal || k == KindDigitComma }

// Path is a decimal heading number, "2.4.1" -> [2 4 1].
type Path []int

func (p Path) Depth() int { return len(p) }

func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// CommonPrefix returns the number of leading components p and q share.
func (p Path) CommonPrefix(q Path) int {
	n := 0
	for n < len(p) && n < len(q) && p[n] == q[n] {
		n++
	}
	return n
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// Key converts p to a comparable map key. Components past MaxDepth are ignored.
func (p Path) Key() PathKey {
	var k PathKey
	for i, v := range p {
		if i == MaxDepth {
			break
		}
		k.v[i] = v
		k.n++
	}
	return k
}

// PathKey is a fixed-size, comparable form of a Path used to index prefixes.
type PathKey struct {
	n uint8
	v [MaxDepth]int
}

func (k PathKey) Len() int { return int(k.n) }

func (k PathKey) Path() Path {
	p := make(Path, k.n)
	copy(p, k.v[:k.n])
	return p
}

func (k PathKey) Parent() PathKey {
	if k.n == 0 {
		return k
	}
	k.n--
	k.v[k.n] = 0
	return k
}

func (k PathKey) Less(o PathKey) bool {
	for i := 0; i < int(k.n) && i < int(o.n); i++ {
		if k.v[i] != o.v[i] {
			return k.v[i] < o.v[i]
		}
	}
	return k.n < o.n
}

// Candidate is a fragment the classifier accepted as a possible heading.
// Stages never mutate a Candidate in place; they return modified copies.
type Candidate struct {
	TextFragment
	Kind       NumberingKind `json:"kind"`
	Path       Path          `json:"path,omitempty"`
	Level      int           `json:"level"`
	TargetPage int           `json:"target_page"`
	// Label is the heading as a bookmark shows it: page reference removed, numbering kept.
	Label string `json:"label"`
	// Title has the numbering removed as well.
	Title string `json:"title"`
}

func (c Candidate) Numbered() bool { return len(c.Path) > 0 }

// Node is one entry of the final outline tree.
type Node struct {
	Title      string  `json:"title"`
	Level      int     `json:"level"`
	Path       Path    `json:"path,omitempty"`
	SourcePage int     `json:"source_page"`
	TargetPage int     `json:"target_page"`
	Dest       string  `json:"dest,omitempty"`
	Children   []*Node `json:"children,omitempty"`
	parent     *Node
}

func (n *Node) Parent() *Node { return n.parent }

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// ExtractionError wraps a fragment source failure. It aborts the run.
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("extract page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("extract: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
