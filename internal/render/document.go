package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/chmouel/covdash/internal/badge"
	"github.com/chmouel/covdash/internal/model"
	"github.com/chmouel/covdash/internal/parser"
)

// Format is an output format of the CLI.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// PythonDocument is the structured output of a line coverage report.
// Comparison is set when a base report was given.
type PythonDocument struct {
	Files      []model.FileStat   `json:"files" yaml:"files"`
	Summary    model.Summary      `json:"summary" yaml:"summary"`
	Comparison *parser.Comparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

// VitestDocument is the structured output of a json-summary report.
type VitestDocument struct {
	Files   []model.VitestFileStat `json:"files" yaml:"files"`
	Totals  model.FileMetrics      `json:"totals" yaml:"totals"`
	Summary model.Summary          `json:"summary" yaml:"summary"`
}

// Write renders doc in the requested format. The table format uses t.
func Write(w io.Writer, format Format, t *Table, doc any, thresholds badge.Thresholds) error {
	switch format {
	case FormatTable, "":
		return Terminal(w, t, thresholds)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		b, err := yaml.MarshalWithOptions(doc, yaml.Indent(2))
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
