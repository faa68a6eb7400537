package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/soccer-rotation/internal/domain/player"
	"github.com/riskibarqy/soccer-rotation/internal/platform/resilience"
	"github.com/riskibarqy/soccer-rotation/internal/usecase"
)

func openBreaker(t *testing.T) *resilience.CircuitBreaker {
	t.Helper()

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Hour,
		HalfOpenMaxReq:   1,
	})
	breaker.RecordFailure()
	if breaker.State() != resilience.CircuitStateOpen {
		t.Fatalf("expected open breaker, got %s", breaker.State())
	}
	return breaker
}

func TestPlayerRepository_OpenBreakerReportsDependencyUnavailable(t *testing.T) {
	// The breaker rejects before the nil db is touched.
	repo := NewPlayerRepository(nil, "", openBreaker(t))
	ctx := context.Background()

	_, err := repo.List(ctx)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) || !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("list: expected dependency unavailable wrapping circuit open, got %v", err)
	}

	err = repo.SaveAll(ctx, player.DefaultRoster())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) || !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("save: expected dependency unavailable wrapping circuit open, got %v", err)
	}
}

func TestPlayerRepository_InvalidRosterIsNotADependencyFailure(t *testing.T) {
	repo := NewPlayerRepository(nil, "", openBreaker(t))

	err := repo.SaveAll(context.Background(), []player.Player{{ID: "", Name: "nobody"}})
	if err == nil || errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
