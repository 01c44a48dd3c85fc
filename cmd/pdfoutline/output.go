package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

var (
	// levelStyles colour entries by depth; deeper levels reuse the last style.
	levelStyles = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)
)

func levelStyle(level int) lipgloss.Style {
	i := min(max(level-1, 0), len(levelStyles)-1)
	return levelStyles[i]
}

// renderTree prints the outline with box-drawing branches.
func renderTree(w io.Writer, roots []*outline.Node) {
	var walk func(nodes []*outline.Node, prefix string)
	walk = func(nodes []*outline.Node, prefix string) {
		for i, n := range nodes {
			branch, next := "├── ", "│   "
			if i == len(nodes)-1 {
				branch, next = "└── ", "    "
			}
			fmt.Fprintf(w, "%s%s%s %s\n",
				dimStyle.Render(prefix), dimStyle.Render(branch),
				levelStyle(n.Level).Render(n.Title),
				dimStyle.Render(fmt.Sprintf("p.%d", n.TargetPage)))
			walk(n.Children, prefix+next)
		}
	}
	walk(roots, "")
}

// renderSummary prints rejection counts per stage.
func renderSummary(w io.Writer, d outline.Diagnostics) {
	rej := d.Rejections()
	stages := make([]string, 0, len(rej))
	for s := range rej {
		stages = append(stages, s)
	}
	sort.Strings(stages)
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", dimStyle.Render("Rejected:"), d.Count(outline.ValidationRejection))
	for _, s := range stages {
		fmt.Fprintf(&b, "\n  %s %d", dimStyle.Render(s+":"), rej[s])
	}
	if n := d.Count(outline.RefinementServiceError); n > 0 {
		fmt.Fprintf(&b, "\n%s %d", dimStyle.Render("Refine fallbacks:"), n)
	}
	if n := d.Count(outline.OutlineConstraintViolation); n > 0 {
		fmt.Fprintf(&b, "\n%s %d", dimStyle.Render("Level fixes:"), n)
	}
	fmt.Fprintln(w, boxStyle.Render(b.String()))
}
