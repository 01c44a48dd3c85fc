package ai

import (
	"fmt"
	"strings"
)

const instruction = `You are reviewing bookmarks that were detected automatically in a PDF.
Each line below is one candidate: its index, title (标题), outline level (层级), page (页码) and font size (字体).
Remove candidates that are not real section headings: page numbers, running headers or footers,
table cells, figure or table captions, list items and sentences from body text.
Keep real headings in their original order and copy their title text exactly.
Change a level only when it is clearly inconsistent with the numbering or font size.
Return ONLY a JSON array of objects {"title": string, "level": integer, "page_num": integer}.
Do not wrap the array in code fences and do not add commentary.`

// BuildPrompt renders the fixed instruction followed by the candidate table.
func BuildPrompt(items []Item) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "[%d] 标题: %s | 层级: %d | 页码: %d | 字体: %.1f\n",
			it.Index, oneLine(it.Title), it.Level, it.Page, it.FontSize)
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
