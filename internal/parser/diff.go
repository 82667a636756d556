package parser

import (
	"github.com/chmouel/covdash/internal/model"
)

// FileDelta describes how the coverage of one file changed between two runs.
type FileDelta struct {
	FilePath            string  `json:"file_path" yaml:"file_path"`
	BasePct             float64 `json:"base_pct" yaml:"base_pct"`
	CurrentPct          float64 `json:"current_pct" yaml:"current_pct"`
	DeltaPct            float64 `json:"delta_pct" yaml:"delta_pct"`
	NewlyCoveredLines   int     `json:"newly_covered_lines" yaml:"newly_covered_lines"`
	NewlyUncoveredLines int     `json:"newly_uncovered_lines" yaml:"newly_uncovered_lines"`
	Added               bool    `json:"added,omitempty" yaml:"added,omitempty"`
	Removed             bool    `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// Comparison is the result of comparing a base run against a current run.
type Comparison struct {
	Files               []FileDelta   `json:"files" yaml:"files"`
	Base                model.Summary `json:"base" yaml:"base"`
	Current             model.Summary `json:"current" yaml:"current"`
	DeltaPct            float64       `json:"delta_pct" yaml:"delta_pct"`
	NewlyCoveredLines   int           `json:"newly_covered_lines" yaml:"newly_covered_lines"`
	NewlyUncoveredLines int           `json:"newly_uncovered_lines" yaml:"newly_uncovered_lines"`
}

// Compare reports per-file coverage changes between two line-based runs. A
// line is newly covered when it was missing in base and executed in current,
// and newly uncovered in the opposite case. Files are ordered by path.
func Compare(base, current map[string]model.FileStat) *Comparison {
	cmp := &Comparison{
		Files:   []FileDelta{},
		Base:    ExtractPythonSummary(base),
		Current: ExtractPythonSummary(current),
	}
	cmp.DeltaPct = cmp.Current.CoveragePct - cmp.Base.CoveragePct

	paths := make(map[string]struct{}, len(current))
	for p := range base {
		paths[p] = struct{}{}
	}
	for p := range current {
		paths[p] = struct{}{}
	}

	for _, p := range sortedKeys(paths) {
		b, inBase := base[p]
		c, inCurrent := current[p]

		d := FileDelta{
			FilePath:   p,
			BasePct:    b.CoveragePct,
			CurrentPct: c.CoveragePct,
			Added:      !inBase,
			Removed:    !inCurrent,
		}
		d.DeltaPct = d.CurrentPct - d.BasePct
		if inBase && inCurrent {
			d.NewlyCoveredLines = countShared(b.MissingLines, c.ExecutedLines)
			d.NewlyUncoveredLines = countShared(b.ExecutedLines, c.MissingLines)
		}

		cmp.NewlyCoveredLines += d.NewlyCoveredLines
		cmp.NewlyUncoveredLines += d.NewlyUncoveredLines
		cmp.Files = append(cmp.Files, d)
	}
	return cmp
}

func countShared(a, b []int) int {
	set := make(map[int]struct{}, len(a))
	for _, n := range a {
		set[n] = struct{}{}
	}
	count := 0
	for _, n := range b {
		if _, ok := set[n]; ok {
			count++
		}
	}
	return count
}
