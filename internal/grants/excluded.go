package grants

import (
	"encoding/json"
	"os"
	"time"
)

// ExcludedPrograms is the persistent list of programs an organization already
// applied to or rejected. Programs on the list never reach scoring again.
type ExcludedPrograms struct {
	Items []*ExcludedProgram
}

type ExcludedProgram struct {
	ID         string
	Title      string
	Agency     string
	ExcludedAt time.Time
}

// GetExcludedProgramsFromFile reads the exclude list. A missing or empty file
// is an empty list.
func GetExcludedProgramsFromFile(path string) (*ExcludedPrograms, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ExcludedPrograms{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedPrograms{}, nil
	}

	var excluded ExcludedPrograms
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedPrograms) Append(s *ExcludedPrograms) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedPrograms) ProgramIDs() []string {
	ids := make([]string, 0)
	for _, program := range e.Items {
		ids = append(ids, program.ID)
	}
	return ids
}

func (e *ExcludedPrograms) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// ToExcluded converts the working set into exclude-list entries.
func (p *Programs) ToExcluded() *ExcludedPrograms {
	excluded := &ExcludedPrograms{}
	for _, program := range p.Items {
		excluded.Items = append(excluded.Items, &ExcludedProgram{
			ID:         program.ID,
			Title:      program.Title,
			Agency:     program.Agency,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}
