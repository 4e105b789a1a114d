package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	label lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		label: NewStyle(h).Width(12),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Count is one labelled row of a summary table.
type Count struct {
	Label string
	Value int
}

// RenderSummary renders a titled block of counts. Zero values in warn rows are omitted.
func RenderSummary(title string, rows []Count, warn ...Count) string {
	var b strings.Builder
	b.WriteString(styles.ok.Render("✓ " + title))
	b.WriteString("\n")

	for _, row := range rows {
		fmt.Fprintf(&b, "%s%d\n", styles.label.Render(row.Label), row.Value)
	}
	for _, row := range warn {
		if row.Value == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s%s\n", styles.label.Render(row.Label), styles.warn.Render(fmt.Sprint(row.Value)))
	}
	return b.String()
}

// RenderError renders a failure line.
func RenderError(title string, err error) string {
	return styles.err.Render(fmt.Sprintf("✗ %s: %v", title, err))
}
