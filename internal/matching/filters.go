package matching

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/connect-rnd/grant-matcher/internal/grants"
)

// DefaultFilters returns the eligibility steps in the order they run. Cheap
// boolean checks run before scoring so clearly-ineligible pairs never reach
// the weighted-sum path.
func DefaultFilters() []Filter {
	return []Filter{
		NewExcludeFileFilter(),
		NewStatusFilter(),
		NewOrgTypeFilter(),
		NewTRLFilter(),
	}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFileFilter creates a filter that removes programs listed in the
// exclude file, typically programs the organization already applied to.
func NewExcludeFileFilter() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(Deps) error {
	f.path = strings.TrimSpace(viper.GetString("exclude-file"))
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, programs *grants.Programs) (*grants.Programs, Step, error) {
	initial := programs.Len()
	if f.path == "" {
		return programs, Step{Initial: initial, Dropped: 0, Left: programs.Len()}, nil
	}

	excluded, err := grants.GetExcludedProgramsFromFile(f.path)
	if err != nil {
		return programs, Step{}, fmt.Errorf("getting excluded programs from file: %w", err)
	}

	removed := programs.Exclude(grants.ProgramIDField, excluded.ProgramIDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding programs based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_programs", removed),
			zap.Int("programs_left", programs.Len()),
		)
	}

	return programs, Step{Initial: initial, Dropped: len(removed), Left: programs.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type statusFilter struct{}

// NewStatusFilter creates a filter that removes expired and archived programs.
func NewStatusFilter() Filter {
	return &statusFilter{}
}

func (f *statusFilter) Name() string { return "status" }

func (f *statusFilter) Disable(string) {}

func (f *statusFilter) IsEnabled() bool { return true }

func (f *statusFilter) Validate(Deps) error { return nil }

func (f *statusFilter) Apply(_ context.Context, deps Deps, programs *grants.Programs) (*grants.Programs, Step, error) {
	initial := programs.Len()
	excluded := removeWhere(programs, func(p *grants.FundingProgram) bool {
		return p.Status != grants.StatusActive
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding programs that are no longer open",
			zap.Strings("excluded_programs", excluded),
			zap.Int("programs_left", programs.Len()),
		)
	}

	return programs, Step{Initial: initial, Dropped: len(excluded), Left: programs.Len()}, nil
}

func (f *statusFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}

type orgTypeFilter struct{}

// NewOrgTypeFilter creates a filter that removes programs the organization's
// legal type cannot apply to.
func NewOrgTypeFilter() Filter {
	return &orgTypeFilter{}
}

func (f *orgTypeFilter) Name() string { return "org_type" }

func (f *orgTypeFilter) Disable(string) {}

func (f *orgTypeFilter) IsEnabled() bool { return true }

func (f *orgTypeFilter) Validate(deps Deps) error {
	if deps.Organization == nil {
		return fmt.Errorf("organization is required")
	}
	return nil
}

func (f *orgTypeFilter) Apply(_ context.Context, deps Deps, programs *grants.Programs) (*grants.Programs, Step, error) {
	initial := programs.Len()
	orgType := deps.Organization.Type

	excluded := removeWhere(programs, func(p *grants.FundingProgram) bool {
		return !p.AcceptsOrgType(orgType)
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding programs by organization type",
			zap.String("org_type", string(orgType)),
			zap.Strings("excluded_programs", excluded),
			zap.Int("programs_left", programs.Len()),
		)
	}

	return programs, Step{Initial: initial, Dropped: len(excluded), Left: programs.Len()}, nil
}

func (f *orgTypeFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}

type trlFilter struct{}

// NewTRLFilter creates a filter that removes programs whose TRL range excludes
// the organization. Programs without a declared range accept every level.
func NewTRLFilter() Filter {
	return &trlFilter{}
}

func (f *trlFilter) Name() string { return "trl_range" }

func (f *trlFilter) Disable(string) {}

func (f *trlFilter) IsEnabled() bool { return true }

func (f *trlFilter) Validate(deps Deps) error {
	if deps.Organization == nil {
		return fmt.Errorf("organization is required")
	}
	return nil
}

func (f *trlFilter) Apply(_ context.Context, deps Deps, programs *grants.Programs) (*grants.Programs, Step, error) {
	initial := programs.Len()
	trl := deps.Organization.TRL

	excluded := removeWhere(programs, func(p *grants.FundingProgram) bool {
		return !p.TRLInRange(trl)
	})

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding programs by trl range",
			zap.Int("org_trl", trl),
			zap.Strings("excluded_programs", excluded),
			zap.Int("programs_left", programs.Len()),
		)
	}

	return programs, Step{Initial: initial, Dropped: len(excluded), Left: programs.Len()}, nil
}

func (f *trlFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{
		"unconstrained_pass": strconv.FormatBool(true),
	}}
}

// removeWhere drops every program matching the predicate and returns the
// removed ids.
func removeWhere(programs *grants.Programs, drop func(*grants.FundingProgram) bool) []string {
	var excluded []string
	kept := programs.Items[:0]
	for _, program := range programs.Items {
		if drop(program) {
			excluded = append(excluded, program.ID)
			continue
		}
		kept = append(kept, program)
	}
	programs.Items = kept
	return excluded
}
