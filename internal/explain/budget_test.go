package explain

import (
	"context"
	"errors"
	"testing"
)

func TestBudgetCap(t *testing.T) {
	budget := NewBudget(0, 3)

	for i := 0; i < 3; i++ {
		if err := budget.Acquire(context.Background()); err != nil {
			t.Fatalf("unexpected error on acquire %d: %v", i, err)
		}
	}

	if err := budget.Acquire(context.Background()); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if budget.Used() != 3 {
		t.Fatalf("expected 3 used, got %d", budget.Used())
	}
}

func TestBudgetUnlimitedCap(t *testing.T) {
	budget := NewBudget(0, 0)

	for i := 0; i < 10; i++ {
		if err := budget.Acquire(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestBudgetHonorsContextCancellation(t *testing.T) {
	// A very slow rate forces the limiter to block; cancellation must win.
	budget := NewBudget(0.001, 0)

	ctx, cancel := context.WithCancel(context.Background())

	// First acquire consumes the initial token.
	if err := budget.Acquire(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancel()
	if err := budget.Acquire(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
