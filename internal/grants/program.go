package grants

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/connect-rnd/grant-matcher/internal/taxonomy"
)

const (
	ProgramIDField     = "ID"
	ProgramAgencyField = "Agency"
)

// ProgramStatus is the lifecycle state of a funding announcement.
type ProgramStatus string

const (
	StatusActive   ProgramStatus = "ACTIVE"
	StatusExpired  ProgramStatus = "EXPIRED"
	StatusArchived ProgramStatus = "ARCHIVED"
)

// FundingProgram is one government funding announcement. Records are ingested
// from external listing feeds and are read-only from the engine's perspective.
type FundingProgram struct {
	ID                     string          `json:"id"`
	Title                  string          `json:"title"`
	Agency                 string          `json:"agency"`
	Sector                 taxonomy.Sector `json:"sector"`
	TRLMin                 int             `json:"trl_min,omitempty"`
	TRLMax                 int             `json:"trl_max,omitempty"`
	Budget                 int64           `json:"budget,omitempty"`
	Deadline               time.Time       `json:"deadline,omitempty"`
	RequiredCertifications []string        `json:"required_certifications,omitempty"`
	EligibleOrgTypes       []OrgType       `json:"eligible_org_types,omitempty"`
	Status                 ProgramStatus   `json:"status"`
}

// HasTRLConstraint reports whether the program declares a TRL range. A zero
// range means any readiness level may apply.
func (p *FundingProgram) HasTRLConstraint() bool {
	return p.TRLMin > 0 || p.TRLMax > 0
}

// TRLInRange reports whether the given TRL satisfies the program's range.
// Programs without a constraint accept every level.
func (p *FundingProgram) TRLInRange(trl int) bool {
	if !p.HasTRLConstraint() {
		return true
	}
	min, max := p.TRLMin, p.TRLMax
	if min == 0 {
		min = 1
	}
	if max == 0 {
		max = 9
	}
	return trl >= min && trl <= max
}

// AcceptsOrgType reports whether the organization type may apply. An empty
// eligibility list means the program is open to all types.
func (p *FundingProgram) AcceptsOrgType(t OrgType) bool {
	if len(p.EligibleOrgTypes) == 0 {
		return true
	}
	for _, eligible := range p.EligibleOrgTypes {
		if eligible == t {
			return true
		}
	}
	return false
}

// Validate checks the fields the matching engine cannot work without. Invalid
// programs are skipped by loaders rather than failing the whole batch.
func (p *FundingProgram) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("program id is required")
	}
	if _, err := taxonomy.ParseSector(string(p.Sector)); err != nil {
		return fmt.Errorf("program %s: %w", p.ID, err)
	}
	if p.TRLMin < 0 || p.TRLMax < 0 || p.TRLMin > 9 || p.TRLMax > 9 {
		return fmt.Errorf("program %s: trl range [%d,%d] is outside 0-9", p.ID, p.TRLMin, p.TRLMax)
	}
	if p.TRLMin > 0 && p.TRLMax > 0 && p.TRLMin > p.TRLMax {
		return fmt.Errorf("program %s: trl range [%d,%d] is inverted", p.ID, p.TRLMin, p.TRLMax)
	}
	return nil
}

func (p *FundingProgram) GetStringField(name string) string {
	switch name {
	case ProgramIDField:
		return p.ID
	case ProgramAgencyField:
		return p.Agency
	default:
		return ""
	}
}

// Programs is a mutable working set of funding announcements flowing through
// the filter pipeline.
type Programs struct {
	Items []*FundingProgram
}

func (p *Programs) Len() int {
	return len(p.Items)
}

func (p *Programs) FindByID(id string) *FundingProgram {
	for _, program := range p.Items {
		if program.ID == id {
			return program
		}
	}
	return nil
}

// RemoveByIndex removes a program from the list by index. Does not preserve order.
func (p *Programs) RemoveByIndex(idx int) {
	p.Items[idx] = p.Items[len(p.Items)-1]
	p.Items = p.Items[:len(p.Items)-1]
}

// Exclude removes programs whose field matches one of the targets and returns
// the removed ids.
func (p *Programs) Exclude(name string, targets []string) []string {
	var excluded []string
	for _, target := range targets {
		for idx, program := range p.Items {
			if program.GetStringField(name) == target {
				p.RemoveByIndex(idx)
				excluded = append(excluded, program.ID)
				break
			}
		}
	}
	return excluded
}

// ReportByAgency groups program summaries by issuing agency.
func (p *Programs) ReportByAgency() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, program := range p.Items {
		report[program.Agency] = append(report[program.Agency], map[string]string{
			"id":       program.ID,
			"title":    program.Title,
			"sector":   program.Sector.String(),
			"deadline": program.Deadline.Format(time.RFC3339),
			"status":   string(program.Status),
		})
	}
	return report
}

// DumpToTmpFile writes the working set to a temporary JSON file and returns
// its name.
func (p *Programs) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "programs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
