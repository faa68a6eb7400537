package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestBreaker(now *time.Time) *CircuitBreaker {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   1,
	})
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_Execute(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)
	boom := errors.New("connection refused")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := b.Execute(ctx, func(context.Context) error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("expected dependency error, got %v", err)
		}
	}

	called := false
	err := b.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected open breaker to short-circuit: err=%v called=%v", err, called)
	}
}

func TestCircuitBreaker_ExecuteIgnoresCallerCancellation(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := newTestBreaker(&now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_ = b.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	}

	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("caller cancellation must not open the breaker, got %s", state)
	}
}

func TestCircuitBreaker_DisabledRunsThrough(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}

	calls := 0
	for i := 0; i < 10; i++ {
		_ = b.Execute(context.Background(), func(context.Context) error {
			calls++
			return errors.New("fail")
		})
	}
	if calls != 10 {
		t.Fatalf("expected every call to run, got %d", calls)
	}
}

func TestCircuitBreakerConfig_Defaults(t *testing.T) {
	if b := NewCircuitBreaker(CircuitBreakerConfig{}); b != nil {
		t.Fatalf("disabled config must yield a nil breaker")
	}

	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: true, FailureThreshold: -1})
	if b.failureThreshold != defaultFailureThreshold || b.openTimeout != defaultOpenTimeout || b.halfOpenMaxReq != defaultHalfOpenMaxReq {
		t.Fatalf("unexpected defaults: threshold=%d timeout=%s probes=%d", b.failureThreshold, b.openTimeout, b.halfOpenMaxReq)
	}
}
