package config

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/thywilljoshua/pdf-outline/internal/ai"
)

// NewRefiner builds the refinement stage for the configured provider. It
// returns nil when refinement is off.
func (c RefineConfig) NewRefiner(ctx context.Context, log *zap.Logger) (ai.Refiner, error) {
	var client ai.Completer
	switch strings.ToLower(c.Provider) {
	case "", "off":
		return nil, nil
	case "openai":
		client = ai.NewOpenAI(c.Endpoint, c.OpenAIKey, c.Model)
	case "gemini":
		g, err := ai.NewGemini(ctx, c.GoogleKey, c.Model)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		client = g
	default:
		return nil, fmt.Errorf("unknown refine provider %q", c.Provider)
	}
	return ai.NewRefiner(client,
		ai.WithBatchSize(c.BatchSize),
		ai.WithConcurrency(c.Concurrency),
		ai.WithTimeout(c.Timeout),
		ai.WithLogger(log),
	), nil
}
