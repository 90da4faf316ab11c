package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/domain"
	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// errNoModel rejects a configured provider with a blank model name.
var errNoModel = errors.New("model name is required")

// ConfigValidator checks provider settings before they are saved: the model
// must be usable for its role and the provider must answer a ping.
type ConfigValidator struct {
	timeout time.Duration
}

// ValidatorOption configures a ConfigValidator.
type ValidatorOption func(*ConfigValidator)

// WithPingTimeout bounds each connectivity check.
func WithPingTimeout(d time.Duration) ValidatorOption {
	return func(v *ConfigValidator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// NewConfigValidator creates a validator.
func NewConfigValidator(opts ...ValidatorOption) *ConfigValidator {
	v := &ConfigValidator{timeout: pingTimeout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateEmbedding rejects unusable embedding settings. Unconfigured
// settings pass: the engine then runs chat-only.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	if config.Model == "" {
		return errNoModel
	}
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	return v.check(svc)
}

// ValidateLLM rejects unusable LLM settings. Embedding-only models are
// refused since they cannot answer.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	if config.Model == "" {
		return errNoModel
	}
	if _, ok := domain.EmbeddingDimensions()[config.Model]; ok {
		return fmt.Errorf("%s is an embedding model and cannot answer questions", config.Model)
	}
	svc, err := CreateLLMService(config)
	if err != nil {
		return err
	}
	return v.check(svc)
}

// check pings svc and always closes it.
func (v *ConfigValidator) check(svc pingCloser) error {
	if svc == nil {
		return nil
	}
	defer svc.Close()
	return ping(svc, v.timeout)
}

// pingCloser is the part of the provider ports the probes need.
type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

func ping(svc pingCloser, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svc.Ping(ctx)
}

// probe keeps svc only when it answers a ping. Failures are wrapped in
// unavailable with a hint naming the settings command that fixes them.
func probe[T pingCloser](svc T, err error, unavailable error, command string) (T, error) {
	var zero T
	if err != nil {
		return zero, fmt.Errorf("%w: %w. Run 'docsassistant settings %s' to fix", unavailable, err, command)
	}
	if any(svc) == nil {
		return zero, nil
	}
	if err := ping(svc, pingTimeout); err != nil {
		svc.Close()
		return zero, fmt.Errorf("%w: service unreachable (%w). Run 'docsassistant settings %s' to fix",
			unavailable, err, command)
	}
	return svc, nil
}
