package grants

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
)

// SkippedProgram records a program dropped at load time and the reason, so one
// bad record never prevents scoring the rest of the batch.
type SkippedProgram struct {
	ID     string
	Reason string
}

// LoadOrganization reads an organization profile from a JSON file. A profile
// the engine cannot score is an error here, not later.
func LoadOrganization(path string) (*Organization, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading organization file %q: %w", path, err)
	}

	var org Organization
	if err := json.Unmarshal(data, &org); err != nil {
		return nil, fmt.Errorf("parsing organization file %q: %w", path, err)
	}

	if err := org.Validate(); err != nil {
		return nil, err
	}
	return &org, nil
}

// LoadPrograms reads a program catalog from a JSON file. Records are decoded
// individually so a malformed field in one record skips that record only;
// records that fail validation are skipped and reported alongside the
// surviving set.
func LoadPrograms(path string) (*Programs, []SkippedProgram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading programs file %q: %w", path, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, fmt.Errorf("parsing programs file %q: %w", path, err)
	}

	programs := &Programs{Items: make([]*FundingProgram, 0, len(items))}
	var skipped []SkippedProgram
	for _, item := range items {
		program, err := decodeProgram(item)
		if err != nil {
			skipped = append(skipped, SkippedProgram{ID: recordID(item), Reason: err.Error()})
			continue
		}
		if err := program.Validate(); err != nil {
			skipped = append(skipped, SkippedProgram{ID: program.ID, Reason: err.Error()})
			continue
		}
		programs.Items = append(programs.Items, program)
	}

	return programs, skipped, nil
}

func decodeProgram(item map[string]any) (*FundingProgram, error) {
	var program FundingProgram

	cfg := &mapstructure.DecoderConfig{
		Metadata:   nil,
		Result:     &program,
		TagName:    "json",
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(item); err != nil {
		return nil, err
	}

	return &program, nil
}

func recordID(item map[string]any) string {
	if id, ok := item["id"].(string); ok {
		return id
	}
	return ""
}
