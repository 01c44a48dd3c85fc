package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var promptLineRe = regexp.MustCompile(`(?m)^\[(\d+)\] 标题: (.*) \| 层级: (\d+) \| 页码: (\d+) \|`)

// echo answers with every candidate of the prompt, unchanged.
func echo(prompt string) string {
	var replies []Reply
	for _, m := range promptLineRe.FindAllStringSubmatch(prompt, -1) {
		level, _ := strconv.Atoi(m[3])
		page, _ := strconv.Atoi(m[4])
		replies = append(replies, Reply{Title: m[2], Level: level, PageNum: page})
	}
	b, _ := json.Marshal(replies)
	return string(b)
}

func testItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{Index: i, Title: fmt.Sprintf("%d. Section %d", i+1, i+1), Level: 1, Page: i + 1, FontSize: 14}
	}
	return items
}

func titlesOf(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestRefineOutOfOrderBatches(t *testing.T) {
	// The first batch finishes last.
	client := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "[0] ") {
			time.Sleep(30 * time.Millisecond)
		}
		return echo(prompt), nil
	})
	items := testItems(5)
	r := NewRefiner(client, WithBatchSize(2), WithConcurrency(3))
	res, err := r.Refine(context.Background(), items)
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.Equal(t, titlesOf(items), titlesOf(res.Items))
	for i, it := range res.Items {
		assert.Equal(t, i, it.Index)
		assert.False(t, it.Reconstructed)
	}
}

func TestRefineFallsBackPerBatch(t *testing.T) {
	client := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "标题: 12 |") {
			return "", &StatusError{StatusCode: 503, Body: "overloaded"}
		}
		return "[]", nil
	})
	items := []Item{
		{Index: 0, Title: "1. Intro", Level: 1, Page: 1},
		{Index: 1, Title: "Noise line", Level: 1, Page: 1},
		{Index: 2, Title: "2. Methods", Level: 1, Page: 2},
		{Index: 3, Title: "12", Level: 1, Page: 2},
	}
	r := NewRefiner(client, WithBatchSize(2))
	res, err := r.Refine(context.Background(), items)
	require.NoError(t, err)

	// The first batch was emptied by the service; the second used the local rule.
	assert.Equal(t, []string{"2. Methods"}, titlesOf(res.Items))
	require.Len(t, res.Failures, 1)
	assert.Equal(t, 1, res.Failures[0].Batch)
	assert.Equal(t, 2, res.Failures[0].Size)
	var se *StatusError
	assert.ErrorAs(t, res.Failures[0].Err, &se)
}

func TestRefineBatchTimeout(t *testing.T) {
	client := completerFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	items := testItems(3)
	r := NewRefiner(client, WithTimeout(20*time.Millisecond))
	res, err := r.Refine(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, titlesOf(items), titlesOf(res.Items))
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, context.DeadlineExceeded)
}

func TestRefineCancelled(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	client := completerFunc(func(cctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		cancel()
		<-cctx.Done()
		return "", cctx.Err()
	})
	r := NewRefiner(client, WithBatchSize(1), WithConcurrency(1))
	res, err := r.Refine(ctx, testItems(4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Items)
	assert.Empty(t, res.Failures)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReconcile(t *testing.T) {
	batch := []Item{
		{Index: 4, Title: "1. Intro", Level: 1, Page: 2, FontSize: 16},
		{Index: 5, Title: "1.1 Scope", Level: 1, Page: 3, FontSize: 13},
	}
	replies := []Reply{
		{Title: "1.1 Scope", Level: 2, PageNum: 99},
		{Title: "1. Intro", Level: 42, PageNum: 2},
		{Title: "2. Results", Level: 1, PageNum: 7},
		{Title: "12", Level: 1, PageNum: 7},
		{Title: "3. Orphan", Level: 1, PageNum: 0},
	}
	out := reconcile(batch, replies)
	require.Len(t, out, 3)

	assert.Equal(t, Item{Index: 5, Title: "1.1 Scope", Level: 2, Page: 3, FontSize: 13}, out[0])
	assert.Equal(t, 1, out[1].Level)
	assert.Equal(t, Item{Index: -1, Title: "2. Results", Level: 1, Page: 7, Reconstructed: true}, out[2])
}

func TestMerge(t *testing.T) {
	a := []Item{{Title: "A", Page: 1}, {Title: "B", Page: 2}}
	b := []Item{{Title: "B", Page: 2}, {Title: "B", Page: 3}}
	assert.Equal(t, []Item{{Title: "A", Page: 1}, {Title: "B", Page: 2}, {Title: "B", Page: 3}}, Merge(a, b))
	assert.Empty(t, Merge())
}

func TestNoop(t *testing.T) {
	items := testItems(2)
	res, err := Noop{}.Refine(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, items, res.Items)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Noop{}.Refine(ctx, items)
	assert.ErrorIs(t, err, context.Canceled)
}
