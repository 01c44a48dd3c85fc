package outline

import (
	"strconv"
)

// Bookmark is one row handed to an outline writer.
type Bookmark struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page,omitempty"`
	Dest  string `json:"dest,omitempty"`
}

// Writer receives a finished outline. Levels always satisfy LegalLevels.
type Writer interface {
	WriteOutline(bookmarks []Bookmark) error
}

// Emit clamps levels once more, bounds target pages to the document and
// assigns unique destination hints. pageCount <= 0 leaves pages unbounded.
func Emit(cands []Candidate, pageCount int) ([]Candidate, []Bookmark, Diagnostics) {
	cands, diags := ClampLevels(cands)
	out := make([]Bookmark, len(cands))
	used := map[string]int{}
	for i, c := range cands {
		page := c.TargetPage
		switch {
		case page < 1:
			page = max(1, c.Page)
			diags.add(StageEmit, OutlineConstraintViolation, c, "missing target page, using %d", page)
		case pageCount > 0 && page > pageCount:
			diags.add(StageEmit, OutlineConstraintViolation, c, "target page %d past end, using %d", page, pageCount)
			page = pageCount
		}
		cands[i].TargetPage = page
		dest := destination(c, i)
		if n := used[dest]; n > 0 {
			used[dest]++
			dest += "-" + strconv.Itoa(n+1)
		} else {
			used[dest] = 1
		}
		out[i] = Bookmark{Level: c.Level, Title: c.Label, Page: page, Dest: dest}
	}
	return cands, out, diags
}

// BuildTree nests a legal flat outline. Each entry hangs under the closest
// preceding entry with a smaller level.
func BuildTree(cands []Candidate, bookmarks []Bookmark) []*Node {
	var roots []*Node
	var stack []*Node
	for i, c := range cands {
		n := &Node{
			Title:      c.Label,
			Level:      c.Level,
			Path:       c.Path,
			SourcePage: c.Page,
			TargetPage: c.TargetPage,
		}
		if i < len(bookmarks) {
			n.Dest = bookmarks[i].Dest
		}
		for len(stack) > 0 && stack[len(stack)-1].Level >= n.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			p := stack[len(stack)-1]
			n.parent = p
			p.Children = append(p.Children, n)
		}
		stack = append(stack, n)
	}
	return roots
}

// Flatten lists a tree's nodes in document order.
func Flatten(roots []*Node) []*Node {
	var out []*Node
	for _, r := range roots {
		r.Walk(func(n *Node) bool {
			out = append(out, n)
			return true
		})
	}
	return out
}
