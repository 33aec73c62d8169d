package matching

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/connect-rnd/grant-matcher/internal/grants"
	"github.com/connect-rnd/grant-matcher/internal/taxonomy"
	"github.com/connect-rnd/grant-matcher/internal/worker"
)

// Config carries the quality-gate thresholds. Both are deliberate rollback
// levers: when match volume drops too far after a tuning change, operators
// lower them back without a code deployment.
type Config struct {
	// RelevanceThreshold is the minimum cross-industry relevance coefficient.
	// Candidates below it are discarded before scoring. Inclusive at the
	// threshold: exactly equal passes.
	RelevanceThreshold float64
	// MinimumMatchScore is the minimum total score on the 0-100 scale.
	MinimumMatchScore int
	// ReviewBand is the relevance value below which surviving cross-sector
	// candidates carry a verification warning.
	ReviewBand float64
	// Concurrency is the number of candidates scored in parallel.
	Concurrency int
}

// DefaultConfig returns the currently tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		RelevanceThreshold: 0.4,
		MinimumMatchScore:  45,
		ReviewBand:         0.6,
		Concurrency:        runtime.NumCPU(),
	}
}

// Validate rejects threshold values the gate cannot interpret.
func (c Config) Validate() error {
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		return fmt.Errorf("relevance threshold %v is outside [0,1]", c.RelevanceThreshold)
	}
	if c.MinimumMatchScore < 0 || c.MinimumMatchScore > 100 {
		return fmt.Errorf("minimum match score %d is outside 0-100", c.MinimumMatchScore)
	}
	if c.ReviewBand < 0 || c.ReviewBand > 1 {
		return fmt.Errorf("review band %v is outside [0,1]", c.ReviewBand)
	}
	return nil
}

// Engine runs the full matching flow: eligibility filters, relevance floor,
// component scoring, score floor and ranking.
type Engine struct {
	cfg      Config
	taxonomy *taxonomy.Taxonomy
	scorer   ComponentScorer
	filters  []Filter
	logger   *zap.Logger
}

// NewEngine creates an engine with the default filter pipeline and component
// scorer. The taxonomy is injected, never a package-level singleton, so
// independent runs can use independent matrix versions.
func NewEngine(cfg Config, tax *taxonomy.Taxonomy, logger *zap.Logger) (*Engine, error) {
	return newEngine(cfg, tax, NewScorer(), logger)
}

// NewEngineWithScorer creates an engine with a caller-provided component
// scorer.
func NewEngineWithScorer(cfg Config, tax *taxonomy.Taxonomy, scorer ComponentScorer, logger *zap.Logger) (*Engine, error) {
	return newEngine(cfg, tax, scorer, logger)
}

func newEngine(cfg Config, tax *taxonomy.Taxonomy, scorer ComponentScorer, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tax == nil {
		return nil, fmt.Errorf("taxonomy is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("component scorer is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cfg:      cfg,
		taxonomy: tax,
		scorer:   scorer,
		filters:  DefaultFilters(),
		logger:   logger,
	}, nil
}

// Filters exposes the eligibility steps for status reporting.
func (e *Engine) Filters() []Filter {
	return e.filters
}

// Result is the outcome of one match-generation run.
type Result struct {
	Matches *Matches
	// Candidates that survived the eligibility filters.
	Eligible int
	// Candidates discarded by the relevance floor, before scoring.
	GatedByRelevance int
	// Candidates scored but discarded by the minimum score floor.
	GatedByScore int
}

// Run matches one organization against the given program set and returns the
// ranked result, truncated to limit. A run that gates away every candidate is
// a valid empty result, not an error.
func (e *Engine) Run(ctx context.Context, org *grants.Organization, programs *grants.Programs, limit int) (*Result, error) {
	if org == nil {
		return nil, fmt.Errorf("organization is required")
	}
	if err := org.Validate(); err != nil {
		return nil, err
	}
	if programs == nil {
		programs = &grants.Programs{}
	}

	deps := Deps{Logger: e.logger, Organization: org}
	eligible, err := RunFilters(ctx, deps, e.filters, programs)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Matches:  &Matches{},
		Eligible: eligible.Len(),
	}

	pool := worker.NewPool(e.cfg.Concurrency)
	pool.Start()
	for _, program := range eligible.Items {
		pool.Submit(&scoreJob{engine: e, org: org, program: program})
	}

	for _, raw := range pool.Wait() {
		outcome := raw.(*scoreOutcome)
		switch {
		case outcome.gatedByRelevance:
			result.GatedByRelevance++
		case outcome.gatedByScore:
			result.GatedByScore++
		default:
			result.Matches.Items = append(result.Matches.Items, outcome.match)
		}
	}

	result.Matches.Sort()
	result.Matches.Truncate(limit)

	e.logger.Info("matching completed",
		zap.String("organization_id", org.ID),
		zap.Int("eligible", result.Eligible),
		zap.Int("gated_by_relevance", result.GatedByRelevance),
		zap.Int("gated_by_score", result.GatedByScore),
		zap.Int("matches", result.Matches.Len()),
	)

	return result, nil
}

type scoreJob struct {
	engine  *Engine
	org     *grants.Organization
	program *grants.FundingProgram
}

type scoreOutcome struct {
	match            *Match
	gatedByRelevance bool
	gatedByScore     bool
}

func (o *scoreOutcome) GetError() error { return nil }

// Execute applies the relevance floor and, only when it passes, runs the
// component scorer and the minimum score floor. The floors are independent: a
// same-sector candidate with a weak total is still discarded.
func (j *scoreJob) Execute(_ context.Context) worker.Result {
	e := j.engine
	relevance := e.taxonomy.Relevance(j.org.Sector, j.program.Sector)

	if relevance < e.cfg.RelevanceThreshold {
		e.logger.Debug("candidate gated by relevance floor",
			zap.String("program_id", j.program.ID),
			zap.Float64("relevance", relevance),
			zap.Float64("threshold", e.cfg.RelevanceThreshold),
		)
		return &scoreOutcome{gatedByRelevance: true}
	}

	scores := e.scorer.Score(j.org, j.program, relevance)
	total := scores.Total()

	if total < e.cfg.MinimumMatchScore {
		e.logger.Debug("candidate gated by minimum score",
			zap.String("program_id", j.program.ID),
			zap.Int("total", total),
			zap.Int("minimum", e.cfg.MinimumMatchScore),
		)
		return &scoreOutcome{gatedByScore: true}
	}

	match := &Match{
		OrganizationID:    j.org.ID,
		ProgramID:         j.program.ID,
		Title:             j.program.Title,
		Agency:            j.program.Agency,
		Deadline:          j.program.Deadline,
		IndustryRelevance: relevance,
		Scores:            scores,
		Total:             total,
	}

	if relevance < e.cfg.ReviewBand {
		match.Warnings = append(match.Warnings, WarningCrossIndustry)
	}

	return &scoreOutcome{match: match}
}
