package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/logger"
)

// EmbeddingGateway batches, throttles and retries calls to an embedding
// provider, and checks every returned vector against the expected dimension.
// It is safe for concurrent use; all sessions share one gateway.
type EmbeddingGateway struct {
	service driven.EmbeddingService
	config  domain.GatewaySettings
	limiter *rate.Limiter

	mu       sync.Mutex
	resumeAt time.Time
}

// NewEmbeddingGateway creates a gateway in front of service.
// Zero config fields fall back to domain.DefaultAppSettings. A nil service
// makes every call fail with domain.ErrEmbeddingUnavailable.
func NewEmbeddingGateway(service driven.EmbeddingService, config domain.GatewaySettings) *EmbeddingGateway {
	defaults := domain.DefaultAppSettings().Gateway
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &EmbeddingGateway{
		service: service,
		config:  config,
		limiter: rate.NewLimiter(limit, config.Burst),
	}
}

// Available reports whether an embedding provider is configured.
func (g *EmbeddingGateway) Available() bool {
	return g != nil && g.service != nil
}

// ModelName returns the provider's model, or "" when unavailable.
func (g *EmbeddingGateway) ModelName() string {
	if !g.Available() {
		return ""
	}
	return g.service.ModelName()
}

// BatchSize returns the effective texts-per-request limit.
func (g *EmbeddingGateway) BatchSize() int {
	size := g.config.BatchSize
	if g.Available() {
		if max := g.service.MaxBatchSize(); max > 0 && max < size {
			size = max
		}
	}
	return size
}

// Embed returns one vector per text, in input order.
// expectedDim is the dimension already established by the caller's index;
// zero means any dimension is accepted as long as all vectors agree.
func (g *EmbeddingGateway) Embed(ctx context.Context, texts []string, expectedDim int) ([][]float32, error) {
	if !g.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batchSize := g.BatchSize()
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		batch, err := g.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: provider returned %d vectors for %d texts",
				domain.ErrEmbeddingUnavailable, len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}

	if err := checkDimensions(vectors, expectedDim); err != nil {
		return nil, err
	}
	return vectors, nil
}

// embedBatch sends one batch, retrying retryable provider errors.
func (g *EmbeddingGateway) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = g.config.InitialBackoff
	policy.MaxInterval = g.config.MaxBackoff
	policy.Multiplier = 2

	operation := func() ([][]float32, error) {
		if err := g.wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		vectors, err := g.service.EmbedBatch(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		if !domain.IsRetryable(err) {
			return nil, backoff.Permanent(err)
		}

		var pe *domain.ProviderError
		if errors.As(err, &pe) && pe.RetryAfter > 0 {
			g.pause(pe.RetryAfter)
		}
		return nil, err
	}

	notify := func(err error, next time.Duration) {
		logger.Warn("Embedding batch of %d failed, retrying in %s: %v", len(texts), next, err)
	}

	vectors, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(g.config.MaxAttempts)),
		backoff.WithNotify(notify),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return vectors, nil
}

// wait blocks until any Retry-After pause has elapsed and the limiter grants a token.
func (g *EmbeddingGateway) wait(ctx context.Context) error {
	g.mu.Lock()
	delay := time.Until(g.resumeAt)
	g.mu.Unlock()

	if delay > 0 {
		logger.Debug("Embedding provider asked to pause, waiting %s", delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return g.limiter.Wait(ctx)
}

// pause holds every caller back for d.
func (g *EmbeddingGateway) pause(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if at := time.Now().Add(d); at.After(g.resumeAt) {
		g.resumeAt = at
	}
}

// checkDimensions verifies every vector has the expected length.
func checkDimensions(vectors [][]float32, expected int) error {
	if len(vectors) == 0 {
		return nil
	}
	if expected <= 0 {
		expected = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != expected || len(v) == 0 {
			return fmt.Errorf("vector %d has %d dimensions, want %d: %w",
				i, len(v), expected, domain.ErrDimensionMismatch)
		}
	}
	return nil
}
