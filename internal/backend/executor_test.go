package backend_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"xlate/internal/backend"
	"xlate/internal/services"
)

type stubBackend struct {
	name        string
	contextSize int
	failUntil   int
	attempts    int
	closed      int
	output      string
}

func (s *stubBackend) Name() string     { return s.name }
func (s *stubBackend) Model() string    { return "stub-model" }
func (s *stubBackend) ContextSize() int { return s.contextSize }
func (s *stubBackend) Close() error     { s.closed++; return nil }

func (s *stubBackend) Translate(_ context.Context, prompt string, _ int) (string, error) {
	s.attempts++
	if s.attempts < s.failUntil {
		return "", services.Wrap(services.ErrBackendRequest, s.name, "translate", "simulated failure", nil)
	}
	if s.output != "" {
		return s.output, nil
	}
	return "translated: " + prompt, nil
}

func alwaysFailing(name string) *stubBackend {
	// failUntil beyond any attempt count keeps the backend failing forever.
	return &stubBackend{name: name, failUntil: 1 << 30}
}

func TestExecuteFailoverRetryCounts(t *testing.T) {
	a := alwaysFailing("a")
	b := &stubBackend{name: "b", failUntil: 2, output: "from-b"}
	var sleeps []time.Duration
	executor := backend.NewExecutor(3, 5*time.Second, backend.WithSleeper(func(d time.Duration) {
		sleeps = append(sleeps, d)
	}))

	result, err := executor.Execute(context.Background(), []backend.Backend{a, b}, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "from-b" || result.Backend != "b" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if a.attempts != 3 {
		t.Fatalf("expected 3 attempts on a, got %d", a.attempts)
	}
	if b.attempts != 2 {
		t.Fatalf("expected 2 attempts on b, got %d", b.attempts)
	}
	// a sleeps after attempts 1 and 2 (not after its final attempt);
	// b sleeps after its first failed attempt only.
	if len(sleeps) != 3 {
		t.Fatalf("expected 3 sleeps, got %d: %v", len(sleeps), sleeps)
	}
	for _, d := range sleeps {
		if d != 5*time.Second {
			t.Fatalf("unexpected sleep duration %v", d)
		}
	}
}

func TestExecuteFirstSuccessSkipsRemainingBackends(t *testing.T) {
	a := &stubBackend{name: "a", output: "from-a"}
	b := &stubBackend{name: "b", output: "from-b"}
	executor := backend.NewExecutor(3, 0)

	result, err := executor.Execute(context.Background(), []backend.Backend{a, b}, "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Backend != "a" {
		t.Fatalf("expected primary backend to win, got %q", result.Backend)
	}
	if b.attempts != 0 {
		t.Fatalf("secondary backend should not be consulted, got %d attempts", b.attempts)
	}
}

func TestExecuteExhaustedCarriesPerBackendErrors(t *testing.T) {
	a := alwaysFailing("a")
	b := alwaysFailing("b")
	executor := backend.NewExecutor(2, 0)

	_, err := executor.Execute(context.Background(), []backend.Backend{a, b}, "hi")
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, services.ErrExhausted) {
		t.Fatalf("expected services.ErrExhausted, got %v", err)
	}
	var exhausted *backend.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T", err)
	}
	if len(exhausted.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(exhausted.Failures))
	}
	if exhausted.Failures[0].Backend != "a" || exhausted.Failures[1].Backend != "b" {
		t.Fatalf("failures out of failover order: %+v", exhausted.Failures)
	}
	for _, failure := range exhausted.Failures {
		if failure.Err == nil {
			t.Fatalf("failure for %s has nil error", failure.Backend)
		}
	}
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	executor := backend.NewExecutor(3, 0)

	_, err := executor.Execute(ctx, []backend.Backend{alwaysFailing("a")}, "hi")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
