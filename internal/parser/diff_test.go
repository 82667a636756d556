package parser

import (
	"testing"

	"github.com/chmouel/covdash/internal/model"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name               string
		base               map[string]model.FileStat
		current            map[string]model.FileStat
		wantNewlyCovered   int
		wantNewlyUncovered int
		wantDeltaPct       float64
	}{
		{
			name:             "newly covered line",
			base:             map[string]model.FileStat{"foo.py": newFileStat("foo.py", nil, []int{1})},
			current:          map[string]model.FileStat{"foo.py": newFileStat("foo.py", []int{1}, nil)},
			wantNewlyCovered: 1,
			wantDeltaPct:     100,
		},
		{
			name:               "regression - was covered now uncovered",
			base:               map[string]model.FileStat{"foo.py": newFileStat("foo.py", []int{1}, nil)},
			current:            map[string]model.FileStat{"foo.py": newFileStat("foo.py", nil, []int{1})},
			wantNewlyUncovered: 1,
			wantDeltaPct:       -100,
		},
		{
			name:    "unchanged",
			base:    map[string]model.FileStat{"foo.py": newFileStat("foo.py", []int{1}, []int{2})},
			current: map[string]model.FileStat{"foo.py": newFileStat("foo.py", []int{1}, []int{2})},
		},
		{
			name:               "mixed changes",
			base:               map[string]model.FileStat{"foo.py": newFileStat("foo.py", []int{1, 3}, []int{2, 4})},
			current:            map[string]model.FileStat{"foo.py": newFileStat("foo.py", []int{1, 2}, []int{3, 4})},
			wantNewlyCovered:   1, // line 2: missing -> executed
			wantNewlyUncovered: 1, // line 3: executed -> missing
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compare(tt.base, tt.current)

			if result.NewlyCoveredLines != tt.wantNewlyCovered {
				t.Errorf("NewlyCoveredLines = %d, want %d", result.NewlyCoveredLines, tt.wantNewlyCovered)
			}
			if result.NewlyUncoveredLines != tt.wantNewlyUncovered {
				t.Errorf("NewlyUncoveredLines = %d, want %d", result.NewlyUncoveredLines, tt.wantNewlyUncovered)
			}
			if result.DeltaPct != tt.wantDeltaPct {
				t.Errorf("DeltaPct = %f, want %f", result.DeltaPct, tt.wantDeltaPct)
			}
			if len(result.Files) != 1 {
				t.Fatalf("expected 1 file delta, got %d", len(result.Files))
			}
		})
	}
}

func TestCompareAddedRemoved(t *testing.T) {
	base := map[string]model.FileStat{
		"old.py":    newFileStat("old.py", []int{1}, nil),
		"shared.py": newFileStat("shared.py", []int{1}, []int{2}),
	}
	current := map[string]model.FileStat{
		"new.py":    newFileStat("new.py", []int{1, 2}, []int{3, 4}),
		"shared.py": newFileStat("shared.py", []int{1, 2}, nil),
	}

	result := Compare(base, current)

	if len(result.Files) != 3 {
		t.Fatalf("expected 3 file deltas, got %d", len(result.Files))
	}

	// Ordered by path.
	want := []struct {
		path    string
		added   bool
		removed bool
		delta   float64
	}{
		{"new.py", true, false, 50},
		{"old.py", false, true, -100},
		{"shared.py", false, false, 50},
	}
	for i, w := range want {
		got := result.Files[i]
		if got.FilePath != w.path {
			t.Errorf("file %d: expected %s, got %s", i, w.path, got.FilePath)
		}
		if got.Added != w.added || got.Removed != w.removed {
			t.Errorf("%s: added=%v removed=%v, want added=%v removed=%v", w.path, got.Added, got.Removed, w.added, w.removed)
		}
		if got.DeltaPct != w.delta {
			t.Errorf("%s: delta = %f, want %f", w.path, got.DeltaPct, w.delta)
		}
	}

	if result.NewlyCoveredLines != 1 {
		t.Errorf("NewlyCoveredLines = %d, want 1", result.NewlyCoveredLines)
	}
	if result.Base.TotalStmts != 3 || result.Current.TotalStmts != 6 {
		t.Errorf("unexpected summaries base=%+v current=%+v", result.Base, result.Current)
	}
}

func TestCompareEmpty(t *testing.T) {
	result := Compare(nil, nil)
	if len(result.Files) != 0 {
		t.Errorf("expected no files, got %d", len(result.Files))
	}
	if result.DeltaPct != 0 {
		t.Errorf("expected zero delta, got %f", result.DeltaPct)
	}
}
