// Package command runs external extraction tools as subprocesses.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tharun-kumar-22/openai-docs-assistant/internal/core/ports/driven"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 2 * time.Minute

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// Runner executes commands with os/exec.
type Runner struct {
	timeout time.Duration
}

// Option configures the runner.
type Option func(*Runner)

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New creates a command runner.
func New(opts ...Option) *Runner {
	r := &Runner{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args, writing stdin to the process and returning stdout.
// A non-zero exit includes the first line of stderr in the error.
func (r *Runner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", name, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return stdout.Bytes(), nil
}

// LookPath reports whether name is on PATH.
func (r *Runner) LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%s: %w", name, exec.ErrNotFound)
		}
		return err
	}
	return nil
}
