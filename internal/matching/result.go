package matching

import (
	"encoding/json"
	"os"
	"sort"
	"time"
)

// WarningCrossIndustry flags candidates that passed the relevance floor but
// sit in the indirect-relevance band. Surfaced to the explanation layer so
// borderline cross-sector matches get human review.
const WarningCrossIndustry = "cross-industry indirect relevance: verify program details"

// Match is one surviving candidate with its explainable score breakdown.
type Match struct {
	OrganizationID    string          `json:"organization_id"`
	ProgramID         string          `json:"program_id"`
	Title             string          `json:"title"`
	Agency            string          `json:"agency"`
	Deadline          time.Time       `json:"deadline,omitempty"`
	IndustryRelevance float64         `json:"industry_relevance"`
	Scores            ComponentScores `json:"scores"`
	Total             int             `json:"total"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// Matches is an ordered result set.
type Matches struct {
	Items []*Match `json:"items"`
}

func (m *Matches) Len() int {
	return len(m.Items)
}

// Sort orders matches by total score descending. Ties break by earlier
// deadline first (programs without a deadline sort last), then by program id
// for a stable, reproducible order.
func (m *Matches) Sort() {
	sort.SliceStable(m.Items, func(i, j int) bool {
		a, b := m.Items[i], m.Items[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if !a.Deadline.Equal(b.Deadline) {
			if a.Deadline.IsZero() {
				return false
			}
			if b.Deadline.IsZero() {
				return true
			}
			return a.Deadline.Before(b.Deadline)
		}
		return a.ProgramID < b.ProgramID
	})
}

// Truncate keeps the top limit matches. A non-positive limit keeps everything.
// Truncation happens only after filtering and sorting so a top-N request is
// never biased by premature cuts.
func (m *Matches) Truncate(limit int) {
	if limit > 0 && len(m.Items) > limit {
		m.Items = m.Items[:limit]
	}
}

// DumpToTmpFile writes the result set to a temporary JSON file and returns
// its name.
func (m *Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}
