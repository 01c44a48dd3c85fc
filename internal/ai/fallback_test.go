package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalFilter(t *testing.T) {
	items := []Item{
		{Index: 0, Title: "1. Intro"},
		{Index: 1, Title: "12"},
		{Index: 2, Title: "- 4 -"},
		{Index: 3, Title: "Page 3 of 10"},
		{Index: 4, Title: "第 5 页"},
		{Index: 5, Title: strings.Repeat("long ", 30)},
		{Index: 6, Title: "see https://example.com"},
		{Index: 7, Title: "1.2.3.4.5 Deep heading"},
		{Index: 8, Title: "a, b; c: d! e? f."},
		{Index: 9, Title: "   "},
	}
	out := LocalFilter(items)
	var kept []int
	for _, it := range out {
		kept = append(kept, it.Index)
	}
	assert.Equal(t, []int{0, 7}, kept)
}
