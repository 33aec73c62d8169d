// Package matching implements the grant-to-organization matching engine: a
// hard eligibility filter pipeline, a weighted component scorer, a two-stage
// quality gate and a deterministic ranker.
package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/connect-rnd/grant-matcher/internal/grants"
)

// Filter represents a single eligibility step applied to the program set.
// Filters are hard gates: a program either survives a step or is dropped, no
// partial credit.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(deps Deps) error
	Apply(ctx context.Context, deps Deps, programs *grants.Programs) (*grants.Programs, Step, error)
}

// Deps aggregates dependencies shared across all filter steps.
type Deps struct {
	Logger       *zap.Logger
	Organization *grants.Organization
}

// Step describes the result of executing a filter step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// RunFilters executes the supplied filters sequentially and returns the
// surviving program set.
func RunFilters(ctx context.Context, deps Deps, steps []Filter, programs *grants.Programs) (*grants.Programs, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(deps); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, programs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		programs = next
	}

	return programs, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
