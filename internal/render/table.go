// Package render turns normalized coverage into tables and documents.
package render

import (
	"fmt"
	"strconv"

	"github.com/chmouel/covdash/internal/model"
	"github.com/chmouel/covdash/internal/parser"
)

// Table is a presentation neutral coverage table shared by the terminal and
// HTML renderers. Pct holds the coverage percentage driving the color of each
// row; Footer is an optional totals row.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Pct     []float64
	Footer  []string
	// FooterPct colors the footer row.
	FooterPct float64
	// PctColumn is the index of the column colored by Pct, -1 for none.
	PctColumn int
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

func metricPct(p model.Percent) string {
	if !p.Known {
		return "n/a"
	}
	return pct(p.Value)
}

func ratio(covered, total int) string {
	return fmt.Sprintf("%d/%d", covered, total)
}

// PythonTable builds the line coverage table of a coverage.py or Go report.
func PythonTable(title string, rows []model.FileStat, summary model.Summary) *Table {
	t := &Table{
		Title:     title,
		Headers:   []string{"File", "Path", "Stmts", "Miss", "Cover"},
		Rows:      make([][]string, 0, len(rows)),
		Pct:       make([]float64, 0, len(rows)),
		PctColumn: 4,
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.FileName,
			r.FilePath,
			strconv.Itoa(r.TotalLines),
			strconv.Itoa(len(r.MissingLines)),
			pct(r.CoveragePct),
		})
		t.Pct = append(t.Pct, r.CoveragePct)
	}
	t.Footer = []string{
		"TOTAL",
		fmt.Sprintf("%d files", summary.TotalFiles),
		strconv.Itoa(summary.TotalStmts),
		strconv.Itoa(summary.TotalMiss),
		pct(summary.CoveragePct),
	}
	t.FooterPct = summary.CoveragePct
	return t
}

// VitestTable builds the metrics table of a json-summary report. The footer
// comes from totals when given, otherwise it is computed from the rows.
func VitestTable(title string, rows []model.VitestFileStat, totals *model.FileMetrics) *Table {
	t := &Table{
		Title:     title,
		Headers:   []string{"File", "Path", "Lines", "Lines %", "Functions", "Functions %", "Branches", "Branches %"},
		Rows:      make([][]string, 0, len(rows)),
		Pct:       make([]float64, 0, len(rows)),
		PctColumn: 3,
	}
	files := make(map[string]model.VitestFileStat, len(rows))
	for _, r := range rows {
		files[r.FilePath] = r
		t.Rows = append(t.Rows, []string{
			r.FileName,
			r.FilePath,
			ratio(r.LinesCovered, r.LinesTotal),
			pct(r.LinesPct),
			ratio(r.FunctionsCovered, r.FunctionsTotal),
			pct(r.FunctionsPct),
			ratio(r.BranchesCovered, r.BranchesTotal),
			pct(r.BranchesPct),
		})
		t.Pct = append(t.Pct, r.LinesPct)
	}

	if totals != nil && totals.Lines != nil && totals.Functions != nil && totals.Branches != nil {
		t.Footer = []string{
			"TOTAL",
			fmt.Sprintf("%d files", len(rows)),
			ratio(totals.Lines.Covered, totals.Lines.Total),
			metricPct(totals.Lines.Pct),
			ratio(totals.Functions.Covered, totals.Functions.Total),
			metricPct(totals.Functions.Pct),
			ratio(totals.Branches.Covered, totals.Branches.Total),
			metricPct(totals.Branches.Pct),
		}
		t.FooterPct = totals.Lines.Pct.Value
		return t
	}

	s := parser.SummarizeVitest(files)
	t.Footer = []string{
		"TOTAL",
		fmt.Sprintf("%d files", s.TotalFiles),
		ratio(s.CoveredStmts, s.TotalStmts),
		pct(s.CoveragePct),
		"", "", "", "",
	}
	t.FooterPct = s.CoveragePct
	return t
}

// ComparisonTable builds the per-file delta table of two line-based runs.
func ComparisonTable(title string, cmp *parser.Comparison) *Table {
	t := &Table{
		Title:     title,
		Headers:   []string{"Path", "Base", "Current", "Delta", "+Covered", "-Covered", "Status"},
		Rows:      make([][]string, 0, len(cmp.Files)),
		Pct:       make([]float64, 0, len(cmp.Files)),
		PctColumn: 2,
	}
	for _, f := range cmp.Files {
		status := ""
		switch {
		case f.Added:
			status = "added"
		case f.Removed:
			status = "removed"
		}
		t.Rows = append(t.Rows, []string{
			f.FilePath,
			pct(f.BasePct),
			pct(f.CurrentPct),
			signedPct(f.DeltaPct),
			strconv.Itoa(f.NewlyCoveredLines),
			strconv.Itoa(f.NewlyUncoveredLines),
			status,
		})
		t.Pct = append(t.Pct, f.CurrentPct)
	}
	t.Footer = []string{
		"TOTAL",
		pct(cmp.Base.CoveragePct),
		pct(cmp.Current.CoveragePct),
		signedPct(cmp.DeltaPct),
		strconv.Itoa(cmp.NewlyCoveredLines),
		strconv.Itoa(cmp.NewlyUncoveredLines),
		"",
	}
	t.FooterPct = cmp.Current.CoveragePct
	return t
}

func signedPct(v float64) string {
	if v > 0 {
		return "+" + pct(v)
	}
	return pct(v)
}
