package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Version          string                        `yaml:"version"`
	DefaultRelevance *float64                      `yaml:"default_relevance"`
	Sectors          []sectorEntry                 `yaml:"sectors"`
	Relevance        map[string]map[string]float64 `yaml:"relevance"`
}

type sectorEntry struct {
	Code     string   `yaml:"code"`
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Load reads and validates a taxonomy data file. Validation is strict: a
// malformed or empty matrix is a startup failure, never silently replaced with
// defaults, because an empty matrix would push every cross-sector pair to the
// floor and over-filter all matches without diagnosis.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Taxonomy from raw YAML.
func Parse(data []byte) (*Taxonomy, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing taxonomy data: %w", err)
	}

	if len(raw.Sectors) == 0 {
		return nil, fmt.Errorf("taxonomy data declares no sectors")
	}

	floor := DefaultRelevanceFloor
	if raw.DefaultRelevance != nil {
		floor = *raw.DefaultRelevance
		if floor < 0 || floor > 1 {
			return nil, fmt.Errorf("default_relevance %v is outside [0,1]", floor)
		}
	}

	sectors := make(map[Sector]SectorInfo, len(raw.Sectors))
	for _, entry := range raw.Sectors {
		code, err := ParseSector(entry.Code)
		if err != nil {
			return nil, fmt.Errorf("sectors: %w", err)
		}
		if _, dup := sectors[code]; dup {
			return nil, fmt.Errorf("sectors: duplicate entry for %s", code)
		}

		keywords := make([]string, 0, len(entry.Keywords))
		for _, kw := range entry.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}

		sectors[code] = SectorInfo{
			Code:     code,
			Label:    strings.TrimSpace(entry.Label),
			Keywords: keywords,
		}
	}

	if len(raw.Relevance) == 0 {
		return nil, fmt.Errorf("taxonomy data declares no relevance matrix")
	}

	relevance := make(map[Sector]map[Sector]float64, len(raw.Relevance))
	for src, row := range raw.Relevance {
		source, err := ParseSector(src)
		if err != nil {
			return nil, fmt.Errorf("relevance matrix: %w", err)
		}
		if _, ok := sectors[source]; !ok {
			return nil, fmt.Errorf("relevance matrix: sector %s is not declared in sectors", source)
		}

		parsed := make(map[Sector]float64, len(row))
		for dst, coeff := range row {
			target, err := ParseSector(dst)
			if err != nil {
				return nil, fmt.Errorf("relevance matrix %s: %w", source, err)
			}
			if _, ok := sectors[target]; !ok {
				return nil, fmt.Errorf("relevance matrix %s: sector %s is not declared in sectors", source, target)
			}
			if coeff < 0 || coeff > 1 {
				return nil, fmt.Errorf("relevance matrix %s -> %s: coefficient %v is outside [0,1]", source, target, coeff)
			}
			if source == target && coeff != 1.0 {
				return nil, fmt.Errorf("relevance matrix %s -> %s: self relevance must be 1.0, got %v", source, target, coeff)
			}
			parsed[target] = coeff
		}
		relevance[source] = parsed
	}

	return &Taxonomy{
		version:   strings.TrimSpace(raw.Version),
		floor:     floor,
		sectors:   sectors,
		relevance: relevance,
	}, nil
}
