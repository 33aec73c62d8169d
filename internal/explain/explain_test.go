package explain

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/connect-rnd/grant-matcher/internal/grants"
	"github.com/connect-rnd/grant-matcher/internal/matching"
	"github.com/connect-rnd/grant-matcher/internal/taxonomy"
)

type stubExplainer struct {
	calls int
	err   error
}

func (s *stubExplainer) Explain(_ context.Context, _ *grants.Organization, match *matching.Match) (*Explanation, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Explanation{Summary: "fits " + match.ProgramID}, nil
}

func testMatch() *matching.Match {
	return &matching.Match{
		OrganizationID:    "org-1",
		ProgramID:         "p-1",
		IndustryRelevance: 1.0,
		Scores:            matching.ComponentScores{Industry: 30, TRL: 20, Certifications: 20, Budget: 15, Experience: 15},
		Total:             100,
	}
}

func testOrg() *grants.Organization {
	return &grants.Organization{ID: "org-1", Sector: taxonomy.SectorCultural, TRL: 7}
}

func TestServiceCachesBySameBreakdown(t *testing.T) {
	stub := &stubExplainer{}
	cache := NewResponseCache(time.Minute, time.Minute)
	service := NewService(stub, cache, nil, zap.NewNop())

	first, err := service.Explain(context.Background(), testOrg(), testMatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := service.Explain(context.Background(), testOrg(), testMatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", stub.calls)
	}
	if first.Summary != second.Summary {
		t.Fatalf("expected cached explanation to be returned")
	}
}

func TestServiceCacheKeyChangesWithScores(t *testing.T) {
	stub := &stubExplainer{}
	cache := NewResponseCache(time.Minute, time.Minute)
	service := NewService(stub, cache, nil, zap.NewNop())

	if _, err := service.Explain(context.Background(), testOrg(), testMatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	retuned := testMatch()
	retuned.Scores.Industry = 15
	retuned.Total = 85

	if _, err := service.Explain(context.Background(), testOrg(), retuned); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stub.calls != 2 {
		t.Fatalf("expected a fresh provider call after score change, got %d", stub.calls)
	}
}

func TestServiceStopsAtBudgetCap(t *testing.T) {
	stub := &stubExplainer{}
	budget := NewBudget(0, 2)
	service := NewService(stub, nil, budget, zap.NewNop())

	for i := 0; i < 2; i++ {
		if _, err := service.Explain(context.Background(), testOrg(), testMatch()); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
	}

	_, err := service.Explain(context.Background(), testOrg(), testMatch())
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if stub.calls != 2 {
		t.Fatalf("expected provider to stay within the cap, got %d calls", stub.calls)
	}
}

func TestServiceCacheHitSpendsNoBudget(t *testing.T) {
	stub := &stubExplainer{}
	cache := NewResponseCache(time.Minute, time.Minute)
	budget := NewBudget(0, 1)
	service := NewService(stub, cache, budget, zap.NewNop())

	if _, err := service.Explain(context.Background(), testOrg(), testMatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Explain(context.Background(), testOrg(), testMatch()); err != nil {
		t.Fatalf("expected cache hit to bypass the exhausted budget, got %v", err)
	}
	if budget.Used() != 1 {
		t.Fatalf("expected 1 budget spend, got %d", budget.Used())
	}
}

func TestServicePropagatesProviderErrors(t *testing.T) {
	stub := &stubExplainer{err: errors.New("provider down")}
	service := NewService(stub, nil, nil, zap.NewNop())

	if _, err := service.Explain(context.Background(), testOrg(), testMatch()); err == nil {
		t.Fatalf("expected provider error")
	}
}
