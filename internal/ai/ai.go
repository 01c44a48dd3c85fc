package ai

import "context"

// Item is one outline candidate as the refinement service sees it.
type Item struct {
	Index    int     `json:"index"`
	Title    string  `json:"title"`
	Level    int     `json:"level"`
	Page     int     `json:"page"`
	FontSize float64 `json:"font_size"`
	// Reconstructed marks items the service returned that match no input title.
	Reconstructed bool `json:"reconstructed,omitempty"`
}

// BatchFailure records a batch that fell back to the local rule.
type BatchFailure struct {
	Batch int
	Size  int
	Err   error
}

type Result struct {
	Items    []Item
	Failures []BatchFailure
}

// Refiner cleans up a candidate list. Service failures never surface as errors;
// only cancellation of ctx does.
type Refiner interface {
	Refine(ctx context.Context, items []Item) (Result, error)
}

// Completer sends one prompt to a text-completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Noop struct{}

func (Noop) Refine(ctx context.Context, items []Item) (Result, error) {
	return Result{Items: items}, ctx.Err()
}
