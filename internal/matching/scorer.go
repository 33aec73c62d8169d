package matching

import (
	"math"

	"github.com/connect-rnd/grant-matcher/internal/grants"
)

// Component weight ceilings. The weights sum to 100, so a total score is
// always on a 0-100 scale.
const (
	MaxIndustryScore      = 30
	MaxTRLScore           = 20
	MaxCertificationScore = 20
	MaxBudgetScore        = 15
	MaxExperienceScore    = 15
)

// ComponentScores is the per-component breakdown of one candidate. The total
// is the exact sum of the components; no component exceeds its ceiling.
type ComponentScores struct {
	Industry       int `json:"industry"`
	TRL            int `json:"trl"`
	Certifications int `json:"certifications"`
	Budget         int `json:"budget"`
	Experience     int `json:"experience"`
}

// Total returns the sum of all components.
func (c ComponentScores) Total() int {
	return c.Industry + c.TRL + c.Certifications + c.Budget + c.Experience
}

// ComponentScorer produces the component breakdown for a candidate that
// already passed the eligibility filters and the relevance floor.
type ComponentScorer interface {
	Score(org *grants.Organization, program *grants.FundingProgram, relevance float64) ComponentScores
}

// Scorer is the default component scorer. It is a pure function of its inputs:
// scoring the same pair twice yields identical results.
type Scorer struct{}

// NewScorer creates the default component scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes the weighted component breakdown. The industry relevance
// coefficient both gated this candidate upstream and feeds the 30-point
// industry component here.
func (s *Scorer) Score(org *grants.Organization, program *grants.FundingProgram, relevance float64) ComponentScores {
	return ComponentScores{
		Industry:       industryScore(relevance),
		TRL:            trlScore(org, program),
		Certifications: certificationScore(org, program),
		Budget:         budgetScore(org, program),
		Experience:     experienceScore(org, program),
	}
}

func industryScore(relevance float64) int {
	if relevance < 0 {
		return 0
	}
	if relevance > 1 {
		relevance = 1
	}
	return int(math.Round(relevance * MaxIndustryScore))
}

// trlScore gives full credit inside the declared range, partial credit for
// near-range proximity and a neutral score when the program declares no range.
func trlScore(org *grants.Organization, program *grants.FundingProgram) int {
	if !program.HasTRLConstraint() {
		return 14
	}
	if program.TRLInRange(org.TRL) {
		return MaxTRLScore
	}

	min, max := program.TRLMin, program.TRLMax
	if min == 0 {
		min = 1
	}
	if max == 0 {
		max = 9
	}

	distance := 0
	switch {
	case org.TRL < min:
		distance = min - org.TRL
	case org.TRL > max:
		distance = org.TRL - max
	}

	switch distance {
	case 1:
		return 10
	case 2:
		return 5
	default:
		return 0
	}
}

// certificationScore rewards the fraction of required certifications the
// organization already holds. Programs without requirements never penalize.
func certificationScore(org *grants.Organization, program *grants.FundingProgram) int {
	required := program.RequiredCertifications
	if len(required) == 0 {
		return MaxCertificationScore
	}

	held := 0
	for _, code := range required {
		if org.HoldsCertification(code) {
			held++
		}
	}

	return int(math.Round(float64(held) / float64(len(required)) * MaxCertificationScore))
}

// Revenue and budget bucket boundaries, KRW.
var (
	revenueScaleBounds = []int64{1_000_000_000, 10_000_000_000, 50_000_000_000}
	budgetScaleBounds  = []int64{500_000_000, 5_000_000_000, 20_000_000_000}
)

func revenueScale(revenue int64) int {
	return scaleOf(revenue, revenueScaleBounds)
}

func budgetScale(budget int64) int {
	return scaleOf(budget, budgetScaleBounds)
}

func scaleOf(v int64, bounds []int64) int {
	for i, bound := range bounds {
		if v < bound {
			return i
		}
	}
	return len(bounds)
}

// budgetScore compares the organization's revenue scale with the program's
// budget scale. A one-step mismatch still earns partial credit; an unknown
// program budget scores neutral.
func budgetScore(org *grants.Organization, program *grants.FundingProgram) int {
	if program.Budget <= 0 {
		return 10
	}

	diff := revenueScale(org.AnnualRevenue) - budgetScale(program.Budget)
	if diff < 0 {
		diff = -diff
	}

	score := MaxBudgetScore - diff*5
	if score < 0 {
		score = 0
	}
	return score
}

// experienceScore compares the organization's R&D experience ordinal with the
// program difficulty, which tracks the budget scale: larger programs expect
// more execution experience.
func experienceScore(org *grants.Organization, program *grants.FundingProgram) int {
	difficulty := budgetScale(program.Budget)
	if program.Budget <= 0 {
		difficulty = 1
	}

	gap := difficulty - org.Experience.Ordinal()
	switch {
	case gap <= 0:
		return MaxExperienceScore
	case gap == 1:
		return 9
	case gap == 2:
		return 4
	default:
		return 0
	}
}
