package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"xlate/internal/logging"
	"xlate/internal/services"
)

// Result is one successful delivery, tagged with the backend that produced it.
type Result struct {
	Text    string
	Backend string
}

// BackendFailure records the last error seen on one backend during an
// exhausted execution.
type BackendFailure struct {
	Backend string
	Err     error
}

// ExhaustedError reports that every backend failed every attempt for one
// prompt. Failures are ordered by failover priority and hold the last error
// per backend.
type ExhaustedError struct {
	Failures []BackendFailure
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", failure.Backend, failure.Err))
	}
	return "all backends exhausted: " + strings.Join(parts, "; ")
}

func (e *ExhaustedError) Is(target error) bool {
	return target == services.ErrExhausted
}

// Executor turns an unreliable remote call into a best-effort reliable one:
// bounded per-backend retries with a fixed delay, then failover to the next
// backend in order.
type Executor struct {
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
	sleeper    func(time.Duration)
}

// ExecutorOption customizes the executor.
type ExecutorOption func(*Executor)

// WithLogger attaches a logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSleeper overrides how inter-attempt sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) ExecutorOption {
	return func(e *Executor) {
		if sleeper != nil {
			e.sleeper = sleeper
		}
	}
}

// NewExecutor constructs an executor with the given per-backend retry policy.
func NewExecutor(maxRetries int, retryDelay time.Duration, opts ...ExecutorOption) *Executor {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if retryDelay < 0 {
		retryDelay = 0
	}
	executor := &Executor{
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logging.NewNop(),
		sleeper:    time.Sleep,
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Execute tries backends in order until one attempt succeeds. The first
// success wins; later backends are never consulted. When every attempt on
// every backend fails, the returned error is an *ExhaustedError matching
// services.ErrExhausted.
func (e *Executor) Execute(ctx context.Context, backends []Backend, prompt string) (Result, error) {
	var failures []BackendFailure
	logger := logging.WithContext(ctx, e.logger)

	for _, b := range backends {
		var lastErr error
		for attempt := 1; attempt <= e.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			text, err := b.Translate(ctx, prompt, 0)
			if err == nil {
				return Result{Text: text, Backend: b.Name()}, nil
			}
			lastErr = err
			logging.WarnWithContext(logger, "backend attempt failed", "backend_attempt_failed",
				logging.String(logging.FieldBackend, b.Name()),
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", e.maxRetries),
				logging.Error(err),
				logging.String(logging.FieldImpact, "retrying or failing over"),
			)
			if attempt < e.maxRetries && e.retryDelay > 0 {
				e.sleeper(e.retryDelay)
			}
		}
		failures = append(failures, BackendFailure{Backend: b.Name(), Err: lastErr})
	}

	return Result{}, &ExhaustedError{Failures: failures}
}
