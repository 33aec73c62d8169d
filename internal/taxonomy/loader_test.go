package taxonomy

import (
	"strings"
	"testing"
)

func TestParseRejectsMalformedData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "no sectors",
			data: "relevance:\n  CULTURAL:\n    ICT: 0.5\n",
			want: "no sectors",
		},
		{
			name: "empty matrix",
			data: "sectors:\n  - code: CULTURAL\n",
			want: "no relevance matrix",
		},
		{
			name: "unknown sector code",
			data: "sectors:\n  - code: WARP_DRIVES\nrelevance:\n  CULTURAL:\n    ICT: 0.5\n",
			want: "unknown sector",
		},
		{
			name: "coefficient above one",
			data: "sectors:\n  - code: CULTURAL\n  - code: ICT\nrelevance:\n  CULTURAL:\n    ICT: 1.5\n",
			want: "outside [0,1]",
		},
		{
			name: "self relevance not one",
			data: "sectors:\n  - code: CULTURAL\nrelevance:\n  CULTURAL:\n    CULTURAL: 0.9\n",
			want: "self relevance must be 1.0",
		},
		{
			name: "matrix references undeclared sector",
			data: "sectors:\n  - code: CULTURAL\nrelevance:\n  CULTURAL:\n    ICT: 0.5\n",
			want: "not declared in sectors",
		},
		{
			name: "floor outside range",
			data: "default_relevance: 1.2\nsectors:\n  - code: CULTURAL\nrelevance:\n  CULTURAL: {}\n",
			want: "outside [0,1]",
		},
		{
			name: "duplicate sector",
			data: "sectors:\n  - code: CULTURAL\n  - code: CULTURAL\nrelevance:\n  CULTURAL: {}\n",
			want: "duplicate entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %q", tt.want, err)
			}
		})
	}
}

func TestParseTrimsKeywordsAndLabel(t *testing.T) {
	data := `
sectors:
  - code: ICT
    label: "  Information and communication  "
    keywords: ["  software ", "", "network"]
relevance:
  ICT: {}
`
	tax := mustParse(t, data)

	if got := tax.Label(SectorICT); got != "Information and communication" {
		t.Fatalf("expected trimmed label, got %q", got)
	}

	keywords := tax.KeywordsFor(SectorICT)
	if len(keywords) != 2 || keywords[0] != "software" || keywords[1] != "network" {
		t.Fatalf("expected trimmed keywords, got %v", keywords)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
