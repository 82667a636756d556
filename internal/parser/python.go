package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chmouel/covdash/internal/model"
)

// DecodePythonPayload decodes a coverage.py JSON report.
func DecodePythonPayload(r io.Reader) (*model.PythonReport, error) {
	var report model.PythonReport
	if err := json.NewDecoder(r).Decode(&report); err != nil {
		return nil, &StructuralError{Err: fmt.Errorf("%w: %w", ErrMalformedJSON, err)}
	}
	if report.Files == nil {
		return nil, &StructuralError{Field: "files", Err: ErrMissingFiles}
	}
	return &report, nil
}

// ParsePythonPayload normalizes a line-coverage report into per-file stats
// keyed by the original file path.
func ParsePythonPayload(report *model.PythonReport) (map[string]model.FileStat, error) {
	if report == nil || report.Files == nil {
		return nil, &StructuralError{Field: "files", Err: ErrMissingFiles}
	}

	stats := make(map[string]model.FileStat, len(report.Files))
	for path, f := range report.Files {
		stats[path] = newFileStat(path, f.ExecutedLines, f.MissingLines)
	}
	return stats, nil
}

// ExtractPythonSummary aggregates per-file stats into run-wide totals.
func ExtractPythonSummary(stats map[string]model.FileStat) model.Summary {
	totalStmts := 0
	coveredStmts := 0
	for _, s := range stats {
		totalStmts += s.TotalLines
		coveredStmts += len(s.ExecutedLines)
	}

	coverage := 0.0
	if totalStmts > 0 {
		coverage = float64(coveredStmts) / float64(totalStmts)
	}

	return model.Summary{
		TotalFiles:   len(stats),
		TotalStmts:   totalStmts,
		CoveredStmts: coveredStmts,
		TotalMiss:    totalStmts - coveredStmts,
		Coverage:     coverage,
		CoveragePct:  coverage * 100,
	}
}

func newFileStat(path string, executed, missing []int) model.FileStat {
	if executed == nil {
		executed = []int{}
	}
	if missing == nil {
		missing = []int{}
	}

	total := len(executed) + len(missing)
	pct := 0.0
	if total > 0 {
		pct = float64(len(executed)) / float64(total) * 100
	}

	return model.FileStat{
		FileName:      baseName(path),
		FilePath:      path,
		ExecutedLines: executed,
		MissingLines:  missing,
		TotalLines:    total,
		CoveragePct:   pct,
	}
}

// baseName returns the final element of a slash or backslash separated path.
// Unlike path.Base it returns "" for "" and for paths ending in a separator.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
