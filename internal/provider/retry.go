package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/pkg/types"
)

// RetryingGenerator wraps a Generator with an exponential backoff policy.
// Retrying is opt-in configuration on the collaborator itself; callers see
// a single blocking Generate call.
type RetryingGenerator struct {
	inner Generator
	cfg   types.RetryConfig
}

// NewRetryingGenerator wraps inner with the given retry policy.
func NewRetryingGenerator(inner Generator, cfg types.RetryConfig) *RetryingGenerator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 1000
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 30000
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	return &RetryingGenerator{inner: inner, cfg: cfg}
}

func (g *RetryingGenerator) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(g.cfg.InitialInterval) * time.Millisecond
	b.MaxInterval = time.Duration(g.cfg.MaxInterval) * time.Millisecond
	b.Multiplier = g.cfg.Multiplier
	b.RandomizationFactor = 0.5
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.cfg.MaxRetries)), ctx)
}

// Generate calls the inner generator, retrying rate-limited calls with
// exponential backoff. Plain generation failures are not retried.
func (g *RetryingGenerator) Generate(ctx context.Context, prompt string, projectFiles map[string]string) (string, error) {
	var result string

	operation := func() error {
		out, err := g.inner.Generate(ctx, prompt, projectFiles)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				logging.Warn().Err(err).Msg("generation rate limited, backing off")
				return err
			}
			return backoff.Permanent(err)
		}
		result = out
		return nil
	}

	if err := backoff.Retry(operation, g.newBackoff(ctx)); err != nil {
		return "", err
	}
	return result, nil
}
