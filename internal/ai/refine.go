package ai

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize   = 100
	DefaultConcurrency = 4
	DefaultTimeout     = 60 * time.Second
	maxReplyLevel      = 8
)

// BatchRefiner splits candidates into batches, sends each to a Completer with
// its own timeout and falls back to LocalFilter for any batch that fails.
type BatchRefiner struct {
	client      Completer
	batchSize   int
	concurrency int
	timeout     time.Duration
	log         *zap.Logger
}

type Option func(*BatchRefiner)

func WithBatchSize(n int) Option {
	return func(r *BatchRefiner) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithConcurrency(n int) Option {
	return func(r *BatchRefiner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *BatchRefiner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *BatchRefiner) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRefiner(c Completer, opts ...Option) *BatchRefiner {
	r := &BatchRefiner{
		client:      c,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		timeout:     DefaultTimeout,
		log:         zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Refine runs all batches. Batches may finish in any order; results are merged
// by (title, page). If ctx is cancelled, batches still in flight are discarded
// and the merged remainder is returned with ctx's error.
func (r *BatchRefiner) Refine(ctx context.Context, items []Item) (Result, error) {
	batches := split(items, r.batchSize)
	done := make([][]Item, len(batches))
	failed := make([]error, len(batches))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, batch := range batches {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			out, err := r.refineBatch(ctx, batch)
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				r.log.Warn("refinement batch failed, using local rule",
					zap.Int("batch", i), zap.Int("size", len(batch)), zap.Error(err))
				failed[i] = err
				out = LocalFilter(batch)
			}
			done[i] = out
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Items: Merge(done...)}
	for i, err := range failed {
		if err != nil {
			res.Failures = append(res.Failures, BatchFailure{Batch: i, Size: len(batches[i]), Err: err})
		}
	}
	return res, ctx.Err()
}

func (r *BatchRefiner) refineBatch(ctx context.Context, batch []Item) ([]Item, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	raw, err := r.client.Complete(cctx, BuildPrompt(batch))
	if err != nil {
		return nil, err
	}
	replies, err := ParseReply(raw)
	if err != nil {
		return nil, err
	}
	return reconcile(batch, replies), nil
}

// reconcile maps replies back onto the batch by exact title so each kept item
// retains its resolved page. Replies matching nothing are kept only if they look
// like a plausible heading with a usable level and page.
func reconcile(batch []Item, replies []Reply) []Item {
	byTitle := map[string][]int{}
	for i, it := range batch {
		byTitle[it.Title] = append(byTitle[it.Title], i)
	}
	out := make([]Item, 0, len(replies))
	for _, rep := range replies {
		if idx := byTitle[rep.Title]; len(idx) > 0 {
			it := batch[idx[0]]
			byTitle[rep.Title] = idx[1:]
			if rep.Level >= 1 && rep.Level <= maxReplyLevel {
				it.Level = rep.Level
			}
			out = append(out, it)
			continue
		}
		if rep.Level < 1 || rep.Level > maxReplyLevel || rep.PageNum < 1 || !plausibleTitle(rep.Title) {
			continue
		}
		out = append(out, Item{
			Index:         -1,
			Title:         rep.Title,
			Level:         rep.Level,
			Page:          rep.PageNum,
			Reconstructed: true,
		})
	}
	return out
}

// Merge unions batches keyed by (title, page). The resulting set does not
// depend on which batch finished first; the order follows the batch order.
func Merge(batches ...[]Item) []Item {
	seen := map[string]bool{}
	var out []Item
	for _, b := range batches {
		for _, it := range b {
			k := it.Title + "\x00" + strconv.Itoa(it.Page)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, it)
		}
	}
	return out
}

func split(items []Item, size int) [][]Item {
	var out [][]Item
	for len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n:n])
		items = items[n:]
	}
	return out
}
