// Package generator writes coverage tables as a self-contained HTML page.
package generator

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/spf13/afero"

	"github.com/chmouel/covdash/internal/badge"
	"github.com/chmouel/covdash/internal/render"
)

//go:embed assets/*
var assets embed.FS

type row struct {
	Level string
	Cells []string
}

type templateData struct {
	Title       string
	Headers     []string
	Rows        []row
	Footer      []string
	FooterLevel string
	FooterCover string
	PctColumn   int
	CSS         template.CSS
	JS          template.JS
	Config      template.JS
}

// Options configures the HTML report generation.
type Options struct {
	Thresholds badge.Thresholds
	// SortColumn is the column sorted on load, -1 keeps the given order.
	SortColumn int
	SortDesc   bool
}

// Level maps a coverage percentage to the CSS class used for coloring.
func Level(coverage float64, thresholds badge.Thresholds) string {
	switch {
	case coverage >= thresholds.Yellow:
		return "high"
	case coverage > thresholds.Red:
		return "medium"
	default:
		return "low"
	}
}

// Generate renders t as an HTML page. An empty path or "-" writes to stdout.
func Generate(fs afero.Fs, stdout io.Writer, t *render.Table, outputPath string, opts Options) error {
	cssBytes, err := assets.ReadFile("assets/style.css")
	if err != nil {
		return fmt.Errorf("reading CSS: %w", err)
	}

	jsBytes, err := assets.ReadFile("assets/app.js")
	if err != nil {
		return fmt.Errorf("reading JS: %w", err)
	}

	htmlBytes, err := assets.ReadFile("assets/template.html")
	if err != nil {
		return fmt.Errorf("reading HTML template: %w", err)
	}

	config := map[string]any{
		"sortColumn": opts.SortColumn,
		"sortDesc":   opts.SortDesc,
	}
	configJSON, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	tmpl, err := template.New("coverage").Parse(string(htmlBytes))
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	title := t.Title
	if title == "" {
		title = "Coverage Report"
	}

	//nolint:gosec // G203: CSS/JS are from embedded assets, config is marshaled from our options
	td := templateData{
		Title:     title,
		Headers:   t.Headers,
		Rows:      make([]row, 0, len(t.Rows)),
		Footer:    t.Footer,
		PctColumn: t.PctColumn,
		CSS:       template.CSS(cssBytes),
		JS:        template.JS(jsBytes),
		Config:    template.JS(configJSON),
	}
	for i, cells := range t.Rows {
		level := ""
		if i < len(t.Pct) {
			level = Level(t.Pct[i], opts.Thresholds)
		}
		td.Rows = append(td.Rows, row{Level: level, Cells: cells})
	}
	if len(t.Footer) > 0 {
		td.FooterLevel = Level(t.FooterPct, opts.Thresholds)
		if t.PctColumn >= 0 && t.PctColumn < len(t.Footer) {
			td.FooterCover = t.Footer[t.PctColumn]
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, td); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	if outputPath == "" || outputPath == "-" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("writing to stdout: %w", err)
		}
		return nil
	}

	if err := afero.WriteFile(fs, outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	return nil
}
