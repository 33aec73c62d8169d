package taxonomy

import (
	"strings"
)

// DefaultRelevanceFloor is used for sector pairs absent from the matrix when
// the data file does not configure its own floor.
const DefaultRelevanceFloor = 0.2

// SectorInfo holds display metadata and the keyword set for one sector.
type SectorInfo struct {
	Code     Sector
	Label    string
	Keywords []string
}

// Taxonomy provides sector metadata and the cross-industry relevance matrix as
// pure lookup operations. The matrix is directional: Relevance(a, b) may differ
// from Relevance(b, a). Instances are immutable after construction and safe for
// concurrent readers.
type Taxonomy struct {
	version   string
	floor     float64
	sectors   map[Sector]SectorInfo
	relevance map[Sector]map[Sector]float64
}

// Version returns the version string carried by the taxonomy data file.
func (t *Taxonomy) Version() string { return t.version }

// Floor returns the relevance coefficient assumed for unlisted sector pairs.
func (t *Taxonomy) Floor() float64 { return t.floor }

// SectorCount returns the number of sectors defined in the taxonomy.
func (t *Taxonomy) SectorCount() int { return len(t.sectors) }

// PairCount returns the number of explicit relevance entries.
func (t *Taxonomy) PairCount() int {
	n := 0
	for _, row := range t.relevance {
		n += len(row)
	}
	return n
}

// Relevance returns the coefficient expressing how applicable a program in the
// target sector is to an organization in the source sector. Self lookups are
// always 1.0 and missing entries fall back to the configured floor.
func (t *Taxonomy) Relevance(source, target Sector) float64 {
	if source == target {
		return 1.0
	}
	if row, ok := t.relevance[source]; ok {
		if coeff, ok := row[target]; ok {
			return coeff
		}
	}
	return t.floor
}

// KeywordsFor returns the keyword set of the given sector, or nil when the
// sector carries no keywords.
func (t *Taxonomy) KeywordsFor(sector Sector) []string {
	info, ok := t.sectors[sector]
	if !ok {
		return nil
	}
	return info.Keywords
}

// Label returns the human-readable label of the sector.
func (t *Taxonomy) Label(sector Sector) string {
	return t.sectors[sector].Label
}

// Classify assigns a sector to free program text by keyword hits. The sector
// with the most distinct keyword matches wins; ties are broken by the fixed
// sector code order. Returns false when no keyword matches.
func (t *Taxonomy) Classify(text string) (Sector, bool) {
	lowered := strings.ToLower(text)

	best := Sector("")
	bestHits := 0
	for _, code := range Sectors {
		info, ok := t.sectors[code]
		if !ok {
			continue
		}
		hits := 0
		for _, kw := range info.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lowered, strings.ToLower(kw)) {
				hits++
			}
		}
		if hits > bestHits {
			best = code
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return "", false
	}
	return best, true
}
