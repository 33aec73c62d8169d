package grants

import (
	"fmt"
	"strings"

	"github.com/connect-rnd/grant-matcher/internal/taxonomy"
)

// OrgType classifies the legal form of an applicant organization.
type OrgType string

const (
	OrgTypeSME        OrgType = "SME"
	OrgTypeStartup    OrgType = "STARTUP"
	OrgTypeResearch   OrgType = "RESEARCH_INSTITUTE"
	OrgTypeUniversity OrgType = "UNIVERSITY"
)

// ExperienceLevel is the ordinal R&D experience scale of an organization.
type ExperienceLevel string

const (
	ExperienceNone   ExperienceLevel = "NONE"
	ExperienceLow    ExperienceLevel = "LOW"
	ExperienceMedium ExperienceLevel = "MEDIUM"
	ExperienceHigh   ExperienceLevel = "HIGH"
)

// Ordinal returns the numeric rank of the experience level, NONE being 0.
// Unknown values rank as NONE.
func (e ExperienceLevel) Ordinal() int {
	switch e {
	case ExperienceLow:
		return 1
	case ExperienceMedium:
		return 2
	case ExperienceHigh:
		return 3
	default:
		return 0
	}
}

// Organization is the applicant profile matched against funding programs.
type Organization struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Type               OrgType         `json:"type"`
	Sector             taxonomy.Sector `json:"sector"`
	TRL                int             `json:"trl"`
	AnnualRevenue      int64           `json:"annual_revenue,omitempty"`
	Certifications     []string        `json:"certifications,omitempty"`
	ResearchFocusAreas []string        `json:"research_focus_areas,omitempty"`
	KeyTechnologies    []string        `json:"key_technologies,omitempty"`
	Experience         ExperienceLevel `json:"rd_experience,omitempty"`
}

// Validate checks the fields the matching engine cannot work without.
func (o *Organization) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("organization id is required")
	}
	if _, err := taxonomy.ParseSector(string(o.Sector)); err != nil {
		return fmt.Errorf("organization %s: %w", o.ID, err)
	}
	if o.TRL < 1 || o.TRL > 9 {
		return fmt.Errorf("organization %s: trl %d is outside 1-9", o.ID, o.TRL)
	}
	return nil
}

// HoldsCertification reports whether the organization holds the given
// certification code. Comparison is case-insensitive.
func (o *Organization) HoldsCertification(code string) bool {
	for _, held := range o.Certifications {
		if strings.EqualFold(strings.TrimSpace(held), strings.TrimSpace(code)) {
			return true
		}
	}
	return false
}
