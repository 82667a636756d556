package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/chmouel/covdash/internal/model"
)

// SortKey selects the row order of a coverage table.
type SortKey string

const (
	SortByPath         SortKey = "path"
	SortByCoverage     SortKey = "coverage"
	SortByCoverageDesc SortKey = "-coverage"
)

// ParseSortKey validates a user supplied sort key. The empty string means path order.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByPath, nil
	case SortByPath, SortByCoverage, SortByCoverageDesc:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want %s, %s or %s)", s, SortByPath, SortByCoverage, SortByCoverageDesc)
	}
}

// PythonRows returns the stats as a slice ordered by key. Ties are broken by path.
func PythonRows(stats map[string]model.FileStat, key SortKey) []model.FileStat {
	rows := make([]model.FileStat, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, s)
	}
	sortRows(rows, key, func(r model.FileStat) (string, float64) { return r.FilePath, r.CoveragePct })
	return rows
}

// VitestRows returns the stats as a slice ordered by key, using line coverage
// for the coverage orders. Ties are broken by path.
func VitestRows(files map[string]model.VitestFileStat, key SortKey) []model.VitestFileStat {
	rows := make([]model.VitestFileStat, 0, len(files))
	for _, s := range files {
		rows = append(rows, s)
	}
	sortRows(rows, key, func(r model.VitestFileStat) (string, float64) { return r.FilePath, r.LinesPct })
	return rows
}

func sortRows[T any](rows []T, key SortKey, fields func(T) (string, float64)) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, ci := fields(rows[i])
		pj, cj := fields(rows[j])
		switch key {
		case SortByCoverage:
			if ci != cj {
				return ci < cj
			}
		case SortByCoverageDesc:
			if ci != cj {
				return ci > cj
			}
		}
		return pi < pj
	})
}

// compilePatterns compiles exclusion patterns, naming the offending one on error.
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func excluded(path string, res []*regexp.Regexp) bool {
	for _, re := range res {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// FilterPython drops every file whose path matches one of the patterns.
func FilterPython(stats map[string]model.FileStat, patterns []string) (map[string]model.FileStat, error) {
	return filterMap(stats, patterns)
}

// FilterVitest drops every file whose cleaned path matches one of the patterns.
func FilterVitest(files map[string]model.VitestFileStat, patterns []string) (map[string]model.VitestFileStat, error) {
	return filterMap(files, patterns)
}

func filterMap[V any](m map[string]V, patterns []string) (map[string]V, error) {
	res, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}
	out := make(map[string]V, len(m))
	for path, v := range m {
		if excluded(path, res) {
			continue
		}
		out[path] = v
	}
	return out, nil
}

// SummarizeVitest aggregates line coverage of the per-file stats. It is used
// when files were filtered out and the report totals no longer apply.
func SummarizeVitest(files map[string]model.VitestFileStat) model.Summary {
	totalStmts := 0
	coveredStmts := 0
	for _, f := range files {
		totalStmts += f.LinesTotal
		coveredStmts += f.LinesCovered
	}

	coverage := 0.0
	if totalStmts > 0 {
		coverage = float64(coveredStmts) / float64(totalStmts)
	}

	return model.Summary{
		TotalFiles:   len(files),
		TotalStmts:   totalStmts,
		CoveredStmts: coveredStmts,
		TotalMiss:    totalStmts - coveredStmts,
		Coverage:     coverage,
		CoveragePct:  coverage * 100,
	}
}
