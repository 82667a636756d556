package badge

import (
	"fmt"
	"html"
	"io"

	"github.com/spf13/afero"

	"github.com/chmouel/covdash/internal/model"
)

// DefaultLabel is the left-hand text of the badge.
const DefaultLabel = "coverage"

// charWidth approximates the width of one Verdana 11px glyph.
const charWidth = 7

// Thresholds defines the color thresholds for badge generation.
type Thresholds struct {
	Red    float64 // Upper threshold for red (0-Red is red)
	Yellow float64 // Upper threshold for yellow (Red-Yellow is yellow, Yellow+ is green)
}

// DefaultThresholds returns the default color thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Red:    40,
		Yellow: 70,
	}
}

// Writer writes badges to a filesystem, or to Stdout when the path is "-".
type Writer struct {
	Fs         afero.Fs
	Stdout     io.Writer
	Label      string
	Thresholds Thresholds
}

// Write renders a badge for the summary's coverage percentage.
func (w *Writer) Write(summary model.Summary, outputPath string) error {
	label := w.Label
	if label == "" {
		label = DefaultLabel
	}
	svg := Render(label, summary.CoveragePct, w.Thresholds)

	if outputPath == "-" {
		if _, err := io.WriteString(w.Stdout, svg); err != nil {
			return fmt.Errorf("writing badge to stdout: %w", err)
		}
		return nil
	}

	if err := afero.WriteFile(w.Fs, outputPath, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("writing badge file: %w", err)
	}
	return nil
}

// Render creates the SVG content of a shields.io style badge.
func Render(label string, coverage float64, thresholds Thresholds) string {
	if coverage < 0 {
		coverage = 0
	}
	if coverage > 100 {
		coverage = 100
	}

	color := Color(coverage, thresholds)
	value := fmt.Sprintf("%.1f%%", coverage)

	leftWidth := len(label)*charWidth + 10
	rightWidth := len(value)*charWidth + 10
	height := 20
	totalWidth := leftWidth + rightWidth
	label = html.EscapeString(label)

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" role="img" aria-label="%s: %s">
  <title>%s: %s</title>
  <g shape-rendering="crispEdges">
    <rect width="%d" height="%d" fill="#555"/>
    <rect x="%d" width="%d" height="%d" fill="%s"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" text-rendering="geometricPrecision" font-size="11">
    <text aria-hidden="true" x="%d" y="15" fill="#010101" fill-opacity=".3">%s</text>
    <text x="%d" y="14">%s</text>
    <text aria-hidden="true" x="%d" y="15" fill="#010101" fill-opacity=".3">%s</text>
    <text x="%d" y="14">%s</text>
  </g>
</svg>`,
		totalWidth, height, label, value,
		label, value,
		leftWidth, height,
		leftWidth, rightWidth, height, color,
		leftWidth/2, label,
		leftWidth/2, label,
		leftWidth+rightWidth/2, value,
		leftWidth+rightWidth/2, value,
	)
}

// Color returns the SVG color code based on coverage percentage and thresholds.
func Color(coverage float64, thresholds Thresholds) string {
	switch {
	case coverage >= thresholds.Yellow:
		return "#4c1" // Green
	case coverage > thresholds.Red:
		return "#dfb317" // Yellow/Amber
	default:
		return "#e05d44" // Red
	}
}
