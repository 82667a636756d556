package model

// PythonReport is the payload written by coverage.py's `coverage json` command.
// Files is required; a nil map means the "files" key was absent.
type PythonReport struct {
	Meta   map[string]any              `json:"meta,omitempty"`
	Files  map[string]PythonFileReport `json:"files"`
	Totals map[string]any              `json:"totals,omitempty"`
}

// PythonFileReport holds the executed and missing line numbers of one file.
// Both lists may be absent from the payload and default to empty.
type PythonFileReport struct {
	ExecutedLines []int `json:"executed_lines,omitempty"`
	MissingLines  []int `json:"missing_lines,omitempty"`
	ExcludedLines []int `json:"excluded_lines,omitempty"`
}

// FileStat is the normalized, line-based coverage of a single file.
type FileStat struct {
	FileName      string  `json:"file_name" yaml:"file_name"`
	FilePath      string  `json:"file_path" yaml:"file_path"`
	ExecutedLines []int   `json:"executed_lines" yaml:"executed_lines"`
	MissingLines  []int   `json:"missing_lines" yaml:"missing_lines"`
	TotalLines    int     `json:"total_lines" yaml:"total_lines"`
	CoveragePct   float64 `json:"coverage_pct" yaml:"coverage_pct"`
}

// Summary contains aggregate statistics over a set of FileStat entries.
type Summary struct {
	TotalFiles   int     `json:"total_files" yaml:"total_files"`
	TotalStmts   int     `json:"total_stmts" yaml:"total_stmts"`
	CoveredStmts int     `json:"covered_stmts" yaml:"covered_stmts"`
	TotalMiss    int     `json:"total_miss" yaml:"total_miss"`
	Coverage     float64 `json:"coverage" yaml:"coverage"`       // ratio in [0, 1]
	CoveragePct  float64 `json:"coverage_pct" yaml:"coverage_pct"` // Coverage * 100
}

// MetricGroup is one istanbul metric (lines, functions, branches, statements).
type MetricGroup struct {
	Total   int     `json:"total" yaml:"total"`
	Covered int     `json:"covered" yaml:"covered"`
	Skipped int     `json:"skipped" yaml:"skipped"`
	Pct     Percent `json:"pct" yaml:"pct"`
}

// FileMetrics is a json-summary entry. Lines, Functions and Branches are
// required for per-file entries.
type FileMetrics struct {
	Lines        *MetricGroup `json:"lines" yaml:"lines,omitempty" validate:"required"`
	Functions    *MetricGroup `json:"functions" yaml:"functions,omitempty" validate:"required"`
	Branches     *MetricGroup `json:"branches" yaml:"branches,omitempty" validate:"required"`
	Statements   *MetricGroup `json:"statements,omitempty" yaml:"statements,omitempty"`
	BranchesTrue *MetricGroup `json:"branchesTrue,omitempty" yaml:"branchesTrue,omitempty"`
}

// VitestReport is a decoded json-summary payload with the run-wide "total"
// entry split away from the per-file entries. Totals is nil when the payload
// had no "total" key.
type VitestReport struct {
	PerFile map[string]FileMetrics
	Totals  *FileMetrics
}

// VitestFileStat is the flattened, metrics-based coverage of a single file.
type VitestFileStat struct {
	FileName         string  `json:"file_name" yaml:"file_name"`
	FilePath         string  `json:"file_path" yaml:"file_path"`
	LinesTotal       int     `json:"lines_total" yaml:"lines_total"`
	LinesCovered     int     `json:"lines_covered" yaml:"lines_covered"`
	LinesPct         float64 `json:"lines_pct" yaml:"lines_pct"`
	FunctionsTotal   int     `json:"functions_total" yaml:"functions_total"`
	FunctionsCovered int     `json:"functions_covered" yaml:"functions_covered"`
	FunctionsPct     float64 `json:"functions_pct" yaml:"functions_pct"`
	BranchesTotal    int     `json:"branches_total" yaml:"branches_total"`
	BranchesCovered  int     `json:"branches_covered" yaml:"branches_covered"`
	BranchesPct      float64 `json:"branches_pct" yaml:"branches_pct"`
}

// VitestResult is the output of normalizing a VitestReport. Totals is the
// payload's "total" entry as-is, or the zero value when it was absent.
type VitestResult struct {
	Files  map[string]VitestFileStat `json:"files" yaml:"files"`
	Totals FileMetrics               `json:"totals" yaml:"totals"`
}
