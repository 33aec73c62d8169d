package grants

import (
	"testing"
	"time"

	"github.com/connect-rnd/grant-matcher/internal/taxonomy"
)

func TestTRLInRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		trl      int
		expect   bool
	}{
		{name: "inside range", min: 4, max: 7, trl: 5, expect: true},
		{name: "at lower bound", min: 4, max: 7, trl: 4, expect: true},
		{name: "at upper bound", min: 4, max: 7, trl: 7, expect: true},
		{name: "below range", min: 4, max: 7, trl: 3, expect: false},
		{name: "above range", min: 4, max: 7, trl: 8, expect: false},
		{name: "no constraint accepts all", min: 0, max: 0, trl: 1, expect: true},
		{name: "open upper bound", min: 6, max: 0, trl: 9, expect: true},
		{name: "open lower bound", min: 0, max: 3, trl: 2, expect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &FundingProgram{TRLMin: tt.min, TRLMax: tt.max}
			if got := p.TRLInRange(tt.trl); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestAcceptsOrgType(t *testing.T) {
	p := &FundingProgram{EligibleOrgTypes: []OrgType{OrgTypeSME, OrgTypeStartup}}

	if !p.AcceptsOrgType(OrgTypeSME) {
		t.Fatalf("expected SME to be accepted")
	}
	if p.AcceptsOrgType(OrgTypeUniversity) {
		t.Fatalf("expected university to be rejected")
	}

	open := &FundingProgram{}
	if !open.AcceptsOrgType(OrgTypeUniversity) {
		t.Fatalf("expected empty eligibility list to accept all types")
	}
}

func TestProgramValidate(t *testing.T) {
	valid := &FundingProgram{ID: "p1", Sector: taxonomy.SectorICT, TRLMin: 4, TRLMax: 7}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		program *FundingProgram
	}{
		{name: "missing id", program: &FundingProgram{Sector: taxonomy.SectorICT}},
		{name: "missing sector", program: &FundingProgram{ID: "p2"}},
		{name: "unknown sector", program: &FundingProgram{ID: "p3", Sector: "QUANTUM"}},
		{name: "inverted range", program: &FundingProgram{ID: "p4", Sector: taxonomy.SectorICT, TRLMin: 7, TRLMax: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.program.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestExclude(t *testing.T) {
	programs := &Programs{Items: []*FundingProgram{
		{ID: "p1", Agency: "KOCCA"},
		{ID: "p2", Agency: "IITP"},
		{ID: "p3", Agency: "KOCCA"},
	}}

	excluded := programs.Exclude(ProgramIDField, []string{"p2"})
	if len(excluded) != 1 || excluded[0] != "p2" {
		t.Fatalf("expected p2 excluded, got %v", excluded)
	}
	if programs.Len() != 2 {
		t.Fatalf("expected 2 programs left, got %d", programs.Len())
	}
	if programs.FindByID("p2") != nil {
		t.Fatalf("expected p2 to be removed")
	}
}

func TestReportByAgency(t *testing.T) {
	deadline := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	programs := &Programs{Items: []*FundingProgram{
		{ID: "p1", Agency: "KOCCA", Sector: taxonomy.SectorContent, Deadline: deadline, Status: StatusActive},
		{ID: "p2", Agency: "KOCCA", Sector: taxonomy.SectorCultural, Deadline: deadline, Status: StatusActive},
		{ID: "p3", Agency: "IITP", Sector: taxonomy.SectorICT, Deadline: deadline, Status: StatusActive},
	}}

	report := programs.ReportByAgency()
	if len(report["KOCCA"]) != 2 {
		t.Fatalf("expected 2 KOCCA entries, got %d", len(report["KOCCA"]))
	}
	if len(report["IITP"]) != 1 {
		t.Fatalf("expected 1 IITP entry, got %d", len(report["IITP"]))
	}
}

func TestOrganizationValidate(t *testing.T) {
	org := &Organization{ID: "org-1", Sector: taxonomy.SectorCultural, TRL: 6}
	if err := org.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := &Organization{ID: "org-2", Sector: taxonomy.SectorCultural, TRL: 12}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range trl")
	}
}

func TestHoldsCertification(t *testing.T) {
	org := &Organization{Certifications: []string{"INNO_BIZ", "iso9001"}}

	if !org.HoldsCertification("ISO9001") {
		t.Fatalf("expected case-insensitive certification match")
	}
	if org.HoldsCertification("VENTURE") {
		t.Fatalf("expected missing certification to report false")
	}
}

func TestExperienceOrdinal(t *testing.T) {
	if ExperienceNone.Ordinal() != 0 || ExperienceHigh.Ordinal() != 3 {
		t.Fatalf("unexpected ordinal mapping")
	}
	if ExperienceLevel("UNSET").Ordinal() != 0 {
		t.Fatalf("expected unknown level to rank as NONE")
	}
}
