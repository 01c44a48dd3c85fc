package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

func sample() []outline.Bookmark {
	return []outline.Bookmark{
		{Level: 1, Title: "1. Intro & Scope", Page: 2, Dest: "sec-1-intro-scope"},
		{Level: 2, Title: "1.1 Background", Page: 3, Dest: "sec-1-1-background"},
		{Level: 1, Title: "Notes, misc", Page: 9},
	}
}

func write(t *testing.T, format string, bms []outline.Bookmark) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(format, &buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteOutline(bms))
	return buf.String()
}

func TestWriters(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{
			format: "txt",
			want: "PDF书签列表\n" + strings.Repeat("=", 50) + "\n\n" +
				"1. Intro & Scope (层级 1, 页面 2)\n" +
				"  1.1 Background (层级 2, 页面 3)\n" +
				"Notes, misc (层级 1, 页面 9)\n",
		},
		{
			format: "csv",
			want:   "title,level,page\n1. Intro & Scope,1,2\n1.1 Background,2,3\n\"Notes, misc\",1,9\n",
		},
		{
			format: "md",
			want: "# Outline\n\n" +
				"- [1. Intro & Scope](#sec-1-intro-scope) (p. 2)\n" +
				"  - [1.1 Background](#sec-1-1-background) (p. 3)\n" +
				"- Notes, misc (p. 9)\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, write(t, tt.format, sample()))
		})
	}
}

func TestJSONWriter(t *testing.T) {
	assert.Equal(t, "[]\n", write(t, "json", nil))

	out := write(t, "json", sample()[:1])
	assert.Contains(t, out, `"title": "1. Intro & Scope"`)
	assert.Contains(t, out, `"dest": "sec-1-intro-scope"`)
}

func TestMarkdownEscapes(t *testing.T) {
	out := write(t, "markdown", []outline.Bookmark{{Level: 1, Title: "a_b [x]", Page: 1}})
	assert.Contains(t, out, `- a\_b \[x\] (p. 1)`)
}

func TestNewWriterUnknown(t *testing.T) {
	_, err := NewWriter("docx", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]string{
		"out.TXT":         "txt",
		"a/b.csv":         "csv",
		"notes.markdown":  "md",
		"bookmarks":       "json",
		"outline.yaml":    "json",
		"dir.v2/out.json": "json",
	} {
		assert.Equal(t, want, FormatFromPath(path), path)
	}
}

func TestParseBookmarks(t *testing.T) {
	tests := []struct {
		name   string
		format string
		in     string
		want   []outline.Bookmark
	}{
		{
			name:   "json",
			format: "json",
			in:     `[{"title":"A","level":2,"page":4},{"title":"  "},{"title":"B"}]`,
			want:   []outline.Bookmark{{Title: "A", Level: 2, Page: 4}, {Title: "B", Level: 1, Page: 1}},
		},
		{
			name:   "txt with info suffix",
			format: "txt",
			in: "PDF书签列表\n=====\n\n" +
				"Intro (层级 1, 页面 2)\n" +
				"  Scope (level 3, page 5)\n",
			want: []outline.Bookmark{{Title: "Intro", Level: 1, Page: 2}, {Title: "Scope", Level: 3, Page: 5}},
		},
		{
			name:   "txt indentation only",
			format: "text",
			in:     "Intro\n  Scope\n    Detail\n",
			want: []outline.Bookmark{
				{Title: "Intro", Level: 1, Page: 1},
				{Title: "Scope", Level: 2, Page: 1},
				{Title: "Detail", Level: 3, Page: 1},
			},
		},
		{
			name:   "csv",
			format: "csv",
			in:     "\ufeffPage,Title,Level\n7,\"Notes, misc\",2\nx,Bare,\n,,\n",
			want:   []outline.Bookmark{{Title: "Notes, misc", Level: 2, Page: 7}, {Title: "Bare", Level: 1, Page: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBookmarks(strings.NewReader(tt.in), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBookmarksReadsWrittenText(t *testing.T) {
	var want []outline.Bookmark
	for _, b := range sample() {
		b.Dest = ""
		want = append(want, b)
	}
	got, err := ParseBookmarks(strings.NewReader(write(t, "txt", sample())), "txt")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseBookmarksErrors(t *testing.T) {
	for _, tt := range []struct{ format, in string }{
		{"md", "# Outline"},
		{"json", "{"},
		{"csv", "level,page\n1,1\n"},
		{"csv", ""},
	} {
		_, err := ParseBookmarks(strings.NewReader(tt.in), tt.format)
		assert.Error(t, err, tt.format+": "+tt.in)
	}
}

func TestWritersOmitUnknownPage(t *testing.T) {
	bms := []outline.Bookmark{{Level: 1, Title: "Stored", Page: 0}, {Level: 2, Title: "Child", Page: 0}}

	assert.Contains(t, write(t, "txt", bms), "Stored (层级 1)\n  Child (层级 2)\n")
	assert.Equal(t, "title,level,page\nStored,1,\nChild,2,\n", write(t, "csv", bms))
	assert.Equal(t, "# Outline\n\n- Stored\n  - Child\n", write(t, "md", bms))
	assert.NotContains(t, write(t, "json", bms), `"page"`)

	got, err := ParseBookmarks(strings.NewReader(write(t, "txt", bms)), "txt")
	require.NoError(t, err)
	assert.Equal(t, []outline.Bookmark{{Title: "Stored", Level: 1, Page: 1}, {Title: "Child", Level: 2, Page: 1}}, got)
}
