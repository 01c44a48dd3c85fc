package outline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-outline/internal/ai"
)

// FragmentSource yields a document's text fragments page by page. Pages are 1-based.
type FragmentSource interface {
	PageCount() int
	PageFragments(page int) ([]TextFragment, error)
}

type Options struct {
	Config  Config
	Refiner ai.Refiner
	Logger  *zap.Logger
}

type Result struct {
	RunID       string      `json:"run_id"`
	PageCount   int         `json:"page_count"`
	Reference   Reference   `json:"reference"`
	Bands       Bands       `json:"bands"`
	Entries     []Candidate `json:"entries"`
	Bookmarks   []Bookmark  `json:"bookmarks"`
	Tree        []*Node     `json:"tree"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Collect reads every page of src. Any source error is an ExtractionError.
func Collect(ctx context.Context, src FragmentSource) ([]TextFragment, error) {
	n := src.PageCount()
	if n <= 0 {
		return nil, &ExtractionError{Err: errors.New("document has no pages")}
	}
	var frags []TextFragment
	for p := 1; p <= n; p++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fs, err := src.PageFragments(p)
		if err != nil {
			return nil, &ExtractionError{Page: p, Err: err}
		}
		frags = append(frags, fs...)
	}
	return frags, nil
}

// Run extracts src and infers its outline.
func Run(ctx context.Context, src FragmentSource, opts Options) (Result, error) {
	frags, err := Collect(ctx, src)
	if err != nil {
		return Result{}, err
	}
	return Infer(ctx, frags, src.PageCount(), opts)
}

// Infer turns fragments into an outline. Only an invalid config or a cancelled
// ctx stop it; every other problem ends up in Result.Diagnostics.
func Infer(ctx context.Context, frags []TextFragment, pageCount int, opts Options) (Result, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid config: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	res := Result{RunID: uuid.NewString(), PageCount: pageCount}
	log = log.With(zap.String("run_id", res.RunID))
	log.Info("inferring outline", zap.Int("fragments", len(frags)), zap.Int("pages", pageCount))

	cands, d := ClassifyAll(frags, cfg.Filter)
	res.absorb(log, StageClassify, len(frags), len(cands), d)

	if cfg.CheckReadingOrder {
		cands = SortReadingOrder(cands)
	}

	n := len(cands)
	cands, d = FilterContent(cands, cfg.Filter)
	res.absorb(log, StageFilter, n, len(cands), d)

	res.Reference = DetectReference(frags, cands, cfg.Alignment)
	log.Debug("alignment reference", zap.Float64("x", res.Reference.X), zap.String("title", res.Reference.Title))
	n = len(cands)
	cands, d = FilterAlignment(cands, res.Reference, cfg.Alignment)
	res.absorb(log, StageAlign, n, len(cands), d)

	n = len(cands)
	cands, res.Bands, d = FilterFontBands(cands, cfg.FontBand)
	res.absorb(log, StageFontBand, n, len(cands), d)

	n = len(cands)
	cands, d = ValidateSequence(cands, cfg.Sequence)
	res.absorb(log, "sequence", n, len(cands), d)

	n = len(cands)
	cands, d = BuildHierarchy(cands, cfg.MaxDepth)
	res.absorb(log, "hierarchy", n, len(cands), d)

	n = len(cands)
	cands, d = Dedup(cands)
	res.absorb(log, StageDedup, n, len(cands), d)

	// A cancelled refinement still emits what its finished batches merged.
	var refineErr error
	if opts.Refiner != nil {
		n = len(cands)
		cands, d, refineErr = refine(ctx, opts.Refiner, cands)
		res.absorb(log, StageRefine, n, len(cands), d)
		n = len(cands)
		cands, d = Dedup(cands)
		res.absorb(log, StageDedup, n, len(cands), d)
	}

	cands, res.Bookmarks, d = Emit(cands, pageCount)
	res.absorb(log, StageEmit, len(cands), len(cands), d)
	res.Entries = cands
	res.Tree = BuildTree(cands, res.Bookmarks)
	if refineErr != nil {
		log.Warn("refinement cancelled, returning partial outline", zap.Int("entries", len(cands)), zap.Error(refineErr))
		return res, fmt.Errorf("refine: %w", refineErr)
	}
	log.Info("outline ready", zap.Int("entries", len(cands)), zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

func (r *Result) absorb(log *zap.Logger, stage string, before, after int, d Diagnostics) {
	r.Diagnostics = append(r.Diagnostics, d...)
	if log.Core().Enabled(zap.DebugLevel) {
		for _, x := range d {
			log.Debug("diagnostic",
				zap.String("stage", x.Stage),
				zap.String("kind", string(x.Kind)),
				zap.String("title", x.Title),
				zap.Int("page", x.Page),
				zap.String("reason", x.Reason))
		}
	}
	log.Info("stage done", zap.String("stage", stage), zap.Int("kept", after), zap.Int("dropped", before-after))
}

// SortReadingOrder orders candidates top to bottom, page by page.
func SortReadingOrder(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].BBox.Y < out[j].BBox.Y
	})
	return out
}

func refine(ctx context.Context, r ai.Refiner, cands []Candidate) ([]Candidate, Diagnostics, error) {
	items := make([]ai.Item, len(cands))
	for i, c := range cands {
		items[i] = ai.Item{Index: i, Title: c.Label, Level: c.Level, Page: c.TargetPage, FontSize: c.FontSize}
	}
	res, err := r.Refine(ctx, items)

	var diags Diagnostics
	for _, f := range res.Failures {
		diags = append(diags, Diagnostic{
			Stage:  StageRefine,
			Kind:   RefinementServiceError,
			Reason: fmt.Sprintf("batch %d (%d entries) used the local rule: %v", f.Batch, f.Size, f.Err),
		})
	}
	kept := make([]bool, len(cands))
	out := make([]Candidate, 0, len(res.Items))
	for _, it := range res.Items {
		if it.Index >= 0 && it.Index < len(cands) && !it.Reconstructed {
			c := cands[it.Index]
			c.Level = it.Level
			kept[it.Index] = true
			out = append(out, c)
			continue
		}
		c := Candidate{
			TextFragment: TextFragment{Text: it.Title, Page: it.Page, FontSize: it.FontSize},
			Level:        it.Level,
			TargetPage:   it.Page,
			Label:        it.Title,
			Title:        it.Title,
		}
		if h, ok := Classify(it.Title); ok {
			c.Kind, c.Path, c.Title = h.Kind, h.Path, h.Title
		}
		diags.add(StageRefine, ClassificationAmbiguity, c, "added by refinement service")
		out = append(out, c)
	}
	if err == nil {
		for i, c := range cands {
			if !kept[i] {
				diags.reject(StageRefine, c, "removed during refinement")
			}
		}
	}
	return out, diags, err
}
