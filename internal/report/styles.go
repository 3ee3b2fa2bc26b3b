// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorPrimary   = lipgloss.Color("62")  // purple
	colorSecondary = lipgloss.Color("241") // gray
	colorHighlight = lipgloss.Color("212") // pink
	colorPositive  = lipgloss.Color("78")  // green
	colorNegative  = lipgloss.Color("203") // red
)

// Title is used for section headings.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	MarginTop(1)

// Muted is used for notes and empty-state messages.
var Muted = lipgloss.NewStyle().
	Foreground(colorSecondary)

var (
	headerCell = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
	border     = lipgloss.NewStyle().Foreground(colorSecondary)
)

// newTable returns a bordered table with the shared header style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})
}

// signed colours a signed score by its sign.
func signed(text string, v float64) string {
	switch {
	case v > 0:
		return lipgloss.NewStyle().Foreground(colorPositive).Render(text)
	case v < 0:
		return lipgloss.NewStyle().Foreground(colorNegative).Render(text)
	default:
		return text
	}
}
