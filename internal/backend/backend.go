package backend

import (
	"context"
	"fmt"
	"strings"
)

// Backend wraps one remote text-generation service. Implementations are
// constructed once per run from configuration and must be closed exactly once
// when the run ends.
type Backend interface {
	// Name returns the configured backend name (failover identity).
	Name() string
	// Model returns the model identifier requests are issued against.
	Model() string
	// ContextSize returns the maximum input size in characters the backend
	// accepts per request, or 0 when unknown.
	ContextSize() int
	// Translate sends one prompt and returns the raw completion text. A
	// maxOutput of 0 or less uses the backend's configured output budget.
	// Errors carry the services.ErrBackendRequest marker.
	Translate(ctx context.Context, prompt string, maxOutput int) (string, error)
	// Close releases idle connections. Safe to call once after the run.
	Close() error
}

// statusError reports a non-2xx response with a trimmed body snippet.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, snippet(e.Body))
}

// snippet collapses a response body to a single bounded line for error text.
func snippet(body string) string {
	clean := strings.Join(strings.Fields(body), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
