package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/chmouel/covdash/internal/badge"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = cellStyle.Bold(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Terminal writes t as a bordered table. Coverage cells are colored with the
// same thresholds as the badge.
func Terminal(w io.Writer, t *Table, thresholds badge.Thresholds) error {
	rows := t.Rows
	if len(t.Footer) > 0 {
		rows = append(rows[:len(rows):len(rows)], t.Footer)
	}
	footerRow := len(t.Rows)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == footerRow:
				if col == t.PctColumn {
					return footerStyle.Foreground(lipgloss.Color(badge.Color(t.FooterPct, thresholds)))
				}
				return footerStyle
			case col == t.PctColumn && row < len(t.Pct):
				return cellStyle.Foreground(lipgloss.Color(badge.Color(t.Pct[row], thresholds)))
			default:
				return cellStyle
			}
		})

	if t.Title != "" {
		if _, err := fmt.Fprintln(w, titleStyle.Render(t.Title)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}
