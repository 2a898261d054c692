package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values. Cells may already be styled.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells are padded by visible
// width so pre-styled values line up.
func (t *Table) Render() string {
	var sb strings.Builder

	headers := make([]string, len(t.Columns))
	divider := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = StyleDim.Render(padR(col.Title, col.Width))
		divider[i] = StyleMeta.Render(strings.Repeat("─", col.Width))
	}
	sb.WriteString(strings.Join(headers, " ") + "\n")
	sb.WriteString(strings.Join(divider, " ") + "\n")

	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			var val string
			if j < len(row) {
				val = row[j]
			}
			cells[j] = padR(clip(val, col.Width), col.Width)
		}
		line := strings.Join(cells, " ")
		if i == t.SelIdx {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	return sb.String()
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0])+1)
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for i, p := range pairs {
		sb.WriteString(StyleMeta.Render(padR(p[0]+":", width)) + "  " + StyleValue.Render(p[1]))
		if i < len(pairs)-1 {
			sb.WriteString("\n")
		}
	}
	return StyleBorder.Render(sb.String())
}

// padR pads s to visible width n.
func padR(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}

// clip truncates unstyled text wider than n with an ellipsis. Styled cells
// are left alone.
func clip(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n || strings.Contains(s, "\x1b") {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// trimErr shortens a failure message for a single status line.
func trimErr(s string, n int) string {
	s = strings.TrimSpace(strings.SplitN(s, "\n", 2)[0])
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
