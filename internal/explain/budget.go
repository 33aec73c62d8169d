package explain

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"
)

// ErrBudgetExhausted is returned once the per-run request cap is spent.
var ErrBudgetExhausted = errors.New("explanation budget exhausted")

// Budget throttles provider calls with a rate limit and an absolute per-run
// request cap. Both guard the same concern: LLM explanation cost.
type Budget struct {
	limiter *rate.Limiter

	mu   sync.Mutex
	max  int
	used int
}

// NewBudget creates a budget allowing requestsPerMinute sustained calls and at
// most maxRequests per run. Non-positive values disable the respective guard.
func NewBudget(requestsPerMinute float64, maxRequests int) *Budget {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerMinute/60), 1)
	}
	return &Budget{
		limiter: limiter,
		max:     maxRequests,
	}
}

// Acquire spends one request from the budget, blocking until the rate limiter
// admits it. Returns ErrBudgetExhausted when the cap is spent.
func (b *Budget) Acquire(ctx context.Context) error {
	b.mu.Lock()
	if b.max > 0 && b.used >= b.max {
		b.mu.Unlock()
		return ErrBudgetExhausted
	}
	b.used++
	b.mu.Unlock()

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Used reports how many requests the budget has admitted.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
