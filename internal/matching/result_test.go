package matching

import (
	"testing"
	"time"
)

func TestMatchesSortPutsMissingDeadlineLast(t *testing.T) {
	deadline := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	matches := &Matches{Items: []*Match{
		{ProgramID: "p-none", Total: 80},
		{ProgramID: "p-dated", Total: 80, Deadline: deadline},
		{ProgramID: "p-top", Total: 95},
	}}
	matches.Sort()

	got := []string{matches.Items[0].ProgramID, matches.Items[1].ProgramID, matches.Items[2].ProgramID}
	want := []string{"p-top", "p-dated", "p-none"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestMatchesTruncate(t *testing.T) {
	matches := &Matches{Items: []*Match{{ProgramID: "a"}, {ProgramID: "b"}, {ProgramID: "c"}}}

	matches.Truncate(0)
	if matches.Len() != 3 {
		t.Fatalf("expected non-positive limit to keep everything, got %d", matches.Len())
	}

	matches.Truncate(2)
	if matches.Len() != 2 {
		t.Fatalf("expected 2 matches after truncation, got %d", matches.Len())
	}
}
