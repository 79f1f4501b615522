// Package table renders widget payloads as tables, either for the
// terminal with lipgloss or as Markdown. Consumers supply data via the
// TableData interface rather than building lipgloss tables directly.
package table

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	// Packages
	lipgloss "github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// TableData is the interface that data sources implement to be rendered
// as a table.
type TableData interface {
	// Header returns the column header labels.
	Header() []string

	// Len returns the number of rows.
	Len() int

	// Row returns the cell values for row i. Values are converted to
	// strings via FormatCell. Return nil to skip a row.
	// Wrap a value in Bold{} to render it in bold.
	Row(i int) []any
}

// Bold wraps a cell value so that FormatCell renders it in bold.
type Bold struct{ Value any }

///////////////////////////////////////////////////////////////////////////////
// STYLES

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cellStyle   = lipgloss.NewStyle()
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Render renders the table data for terminal output. When width is
// positive and the natural render is wider, columns are wrapped to fit.
func Render(data TableData, width int) string {
	t := lgtable.New().
		Headers(data.Header()...).
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Wrap(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i := range data.Len() {
		if cells := cells(data, i, FormatCell); cells != nil {
			t.Row(cells...)
		}
	}

	// Only constrain the width if the natural render exceeds it
	result := t.Render()
	if width > 0 && lipgloss.Width(result) > width {
		t.Width(width)
		result = t.Render()
	}
	return result
}

// RenderMarkdown renders the table data as a Markdown table
func RenderMarkdown(data TableData) string {
	header := data.Header()
	if len(header) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("| " + strings.Join(header, " | ") + " |\n|")
	for range header {
		buf.WriteString("---|")
	}
	for i := range data.Len() {
		row := cells(data, i, formatMarkdownCell)
		if row == nil {
			continue
		}
		for len(row) < len(header) {
			row = append(row, "-")
		}
		buf.WriteString("\n| " + strings.Join(row[:len(header)], " | ") + " |")
	}
	return buf.String()
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

// Truncate shortens s to max runes, collapsing newlines and appending "…"
// if truncated.
func Truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// FormatCell converts a decoded JSON value to a display string for a
// table cell. Missing values render as "-", and nested values as compact
// JSON.
func FormatCell(v any) string {
	if bold, ok := v.(Bold); ok {
		return boldStyle.Render(FormatCell(bold.Value))
	}
	return format(v)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func cells(data TableData, i int, fn func(any) string) []string {
	row := data.Row(i)
	if row == nil {
		return nil
	}
	result := make([]string, len(row))
	for j, v := range row {
		result[j] = fn(v)
	}
	return result
}

// formatMarkdownCell converts a cell value to a markdown cell string.
// Bold values are wrapped in ** markers, and pipes are escaped.
func formatMarkdownCell(v any) string {
	if bold, ok := v.(Bold); ok {
		if inner := formatMarkdownCell(bold.Value); inner != "-" {
			return "**" + inner + "**"
		}
		return "-"
	}
	return strings.ReplaceAll(Truncate(format(v), 80), "|", `\|`)
}

func format(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if val == "" {
			return "-"
		}
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case map[string]any, []any:
		if data, err := json.Marshal(val); err == nil {
			return string(data)
		}
	}
	if s := fmt.Sprint(v); s != "" {
		return s
	}
	return "-"
}
