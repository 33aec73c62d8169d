// Package explain turns match score breakdowns into human-readable
// justifications through an LLM provider, with response caching and a
// per-run cost budget.
package explain

import (
	"context"

	"go.uber.org/zap"

	"github.com/connect-rnd/grant-matcher/internal/grants"
	"github.com/connect-rnd/grant-matcher/internal/matching"
)

// Explanation is a generated justification for one match.
type Explanation struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights,omitempty"`
	Caution    string   `json:"caution,omitempty"`
	Raw        string   `json:"-"`
}

// Explainer generates an explanation for a single match.
type Explainer interface {
	Explain(ctx context.Context, org *grants.Organization, match *matching.Match) (*Explanation, error)
}

// Service wraps an Explainer with caching and budget enforcement. Cache and
// budget are optional: a nil field disables that layer.
type Service struct {
	explainer Explainer
	cache     *ResponseCache
	budget    *Budget
	logger    *zap.Logger
}

// NewService builds the explanation service.
func NewService(explainer Explainer, cache *ResponseCache, budget *Budget, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		explainer: explainer,
		cache:     cache,
		budget:    budget,
		logger:    logger,
	}
}

// Explain returns a cached explanation when one exists for the exact score
// breakdown, otherwise spends budget and calls the provider. Budget exhaustion
// surfaces as ErrBudgetExhausted so callers can degrade to score-only output.
func (s *Service) Explain(ctx context.Context, org *grants.Organization, match *matching.Match) (*Explanation, error) {
	key := CacheKey(match)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.logger.Debug("explanation cache hit",
				zap.String("program_id", match.ProgramID),
			)
			return cached, nil
		}
	}

	if s.budget != nil {
		if err := s.budget.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	explanation, err := s.explainer.Explain(ctx, org, match)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(key, explanation)
	}

	return explanation, nil
}
