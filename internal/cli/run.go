package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chmouel/covdash/internal/badge"
	"github.com/chmouel/covdash/internal/generator"
	"github.com/chmouel/covdash/internal/loader"
	"github.com/chmouel/covdash/internal/model"
	"github.com/chmouel/covdash/internal/parser"
	"github.com/chmouel/covdash/internal/render"
)

// ErrUnknownFormat is returned when auto detection cannot tell the report schema.
var ErrUnknownFormat = errors.New("unable to detect coverage report format")

var titles = map[parser.Format]string{
	parser.FormatPython: "Python coverage",
	parser.FormatVitest: "Vitest coverage",
	parser.FormatGo:     "Go coverage",
}

// output is what every report kind hands to the writers.
type output struct {
	table   *render.Table
	doc     any
	summary model.Summary
}

func (a *app) run(cmd *cobra.Command, format parser.Format, source string) error {
	ld := loader.New(loader.Options{
		Fs:      a.fs,
		Timeout: a.cfg.HTTP.Timeout,
		Retries: a.cfg.HTTP.Retries,
		Logger:  a.logger,
	})
	defer ld.Close()

	sources := []string{source}
	if a.opts.base != "" {
		sources = append(sources, a.opts.base)
	}
	raws, err := ld.LoadAll(cmd.Context(), sources)
	if err != nil {
		return err
	}

	if format == parser.FormatUnknown {
		format = parser.DetectFormat(raws[0])
		if format == parser.FormatUnknown {
			return fmt.Errorf("%s: %w", source, ErrUnknownFormat)
		}
		a.logger.Debug("detected report format", zap.String("source", source), zap.String("format", string(format)))
	}

	sortKey, err := parser.ParseSortKey(a.cfg.Output.Sort)
	if err != nil {
		return err
	}
	title := a.opts.title
	if title == "" {
		title = titles[format]
	}

	var out *output
	if format == parser.FormatVitest {
		if a.opts.base != "" {
			return fmt.Errorf("--base is only supported for line-based reports")
		}
		out, err = a.vitestOutput(raws[0], title, sortKey)
	} else {
		var base []byte
		if len(raws) > 1 {
			base = raws[1]
		}
		out, err = a.lineOutput(format, raws[0], base, title, sortKey)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	return a.write(cmd.OutOrStdout(), out)
}

func (a *app) lineOutput(format parser.Format, raw, baseRaw []byte, title string, sortKey parser.SortKey) (*output, error) {
	stats, err := a.lineStats(format, raw)
	if err != nil {
		return nil, err
	}
	summary := parser.ExtractPythonSummary(stats)
	rows := parser.PythonRows(stats, sortKey)
	doc := render.PythonDocument{Files: rows, Summary: summary}
	out := &output{table: render.PythonTable(title, rows, summary), doc: doc, summary: summary}

	if baseRaw != nil {
		baseFormat := parser.DetectFormat(baseRaw)
		if baseFormat != parser.FormatPython && baseFormat != parser.FormatGo {
			return nil, fmt.Errorf("base report: %w", ErrUnknownFormat)
		}
		baseStats, err := a.lineStats(baseFormat, baseRaw)
		if err != nil {
			return nil, fmt.Errorf("base report: %w", err)
		}
		cmp := parser.Compare(baseStats, stats)
		doc.Comparison = cmp
		out.doc = doc
		out.table = render.ComparisonTable(title+" (vs base)", cmp)
		a.logger.Debug("compared against base",
			zap.Float64("base_pct", cmp.Base.CoveragePct),
			zap.Float64("delta_pct", cmp.DeltaPct))
	}
	return out, nil
}

// lineStats decodes a coverage.py or Go report and applies --exclude.
func (a *app) lineStats(format parser.Format, raw []byte) (map[string]model.FileStat, error) {
	var (
		report *model.PythonReport
		err    error
	)
	switch format {
	case parser.FormatGo:
		modPath, merr := parser.ModulePath(a.cfg.SrcRoot)
		if merr != nil {
			return nil, merr
		}
		report, err = parser.DecodeGoProfile(bytes.NewReader(raw), modPath)
	default:
		report, err = parser.DecodePythonPayload(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, err
	}

	stats, err := parser.ParsePythonPayload(report)
	if err != nil {
		return nil, err
	}
	return parser.FilterPython(stats, a.opts.exclude)
}

func (a *app) vitestOutput(raw []byte, title string, sortKey parser.SortKey) (*output, error) {
	report, err := parser.DecodeVitestPayload(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if report.Totals == nil {
		a.logger.Warn(`json-summary report has no "total" entry, totals are computed from files`)
	}

	result, err := parser.ParseVitestPayload(report, a.cfg.PathPrefix)
	if err != nil {
		return nil, err
	}
	files, err := parser.FilterVitest(result.Files, a.opts.exclude)
	if err != nil {
		return nil, err
	}

	// Report totals no longer match once files are excluded.
	totals := report.Totals
	if len(a.opts.exclude) > 0 {
		totals = nil
	}

	rows := parser.VitestRows(files, sortKey)
	summary := parser.SummarizeVitest(files)
	return &output{
		table:   render.VitestTable(title, rows, totals),
		doc:     render.VitestDocument{Files: rows, Totals: result.Totals, Summary: summary},
		summary: summary,
	}, nil
}

func (a *app) write(stdout io.Writer, out *output) error {
	thresholds := badge.Thresholds{Red: a.cfg.Badge.Red, Yellow: a.cfg.Badge.Yellow}

	if err := render.Write(stdout, render.Format(a.cfg.Output.Format), out.table, out.doc, thresholds); err != nil {
		return err
	}

	if a.opts.htmlPath != "" {
		opts := generator.Options{Thresholds: thresholds, SortColumn: -1}
		if err := generator.Generate(a.fs, stdout, out.table, a.opts.htmlPath, opts); err != nil {
			return fmt.Errorf("generating HTML report: %w", err)
		}
		a.logger.Info("HTML report written", zap.String("path", a.opts.htmlPath))
		if a.opts.open && a.opts.htmlPath != "-" {
			openBrowser(a.opts.htmlPath)
		}
	}

	if a.opts.badgePath != "" {
		w := &badge.Writer{Fs: a.fs, Stdout: stdout, Label: a.opts.badgeLabel, Thresholds: thresholds}
		if err := w.Write(out.summary, a.opts.badgePath); err != nil {
			return err
		}
		a.logger.Info("badge written", zap.String("path", a.opts.badgePath))
	}

	if a.opts.failUnder > 0 && out.summary.CoveragePct < a.opts.failUnder {
		return fmt.Errorf("%w: %.1f%% < %.1f%%", ErrBelowThreshold, out.summary.CoveragePct, a.opts.failUnder)
	}
	return nil
}
