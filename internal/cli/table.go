package cli

import (
	"strings"
	"unicode/utf8"
)

// Table formats rows into aligned columns.
type Table struct {
	headers []string
	rows    [][]string
	padding int
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		padding: 2, // 2 spaces between columns
	}
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	if len(row) == len(t.headers) {
		t.rows = append(t.rows, row)
		return
	}
	newRow := make([]string, len(t.headers))
	copy(newRow, row)
	t.rows = append(t.rows, newRow)
}

// Render formats and returns the table as a string. Column widths ignore
// terminal escape sequences, so cells may hold colour swatches.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(t.headers))
	for i, h := range t.headers {
		colWidths[i] = cellWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			colWidths[i] = max(colWidths[i], cellWidth(cell))
		}
	}

	sep := strings.Repeat(" ", t.padding)
	var result strings.Builder

	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(cell, colWidths[i])
		}
		result.WriteString(strings.TrimRight(strings.Join(parts, sep), " "))
		result.WriteString("\n")
	}

	writeLine(t.headers)

	rule := make([]string, len(t.headers))
	for i, w := range colWidths {
		rule[i] = strings.Repeat("-", w)
	}
	writeLine(rule)

	for _, row := range t.rows {
		writeLine(row)
	}

	return result.String()
}

// padRight pads a string with spaces on the right to reach the desired width.
// If the string is already as wide or wider, it is returned unchanged.
func padRight(s string, width int) string {
	w := cellWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// cellWidth counts the runes of s outside CSI escape sequences.
func cellWidth(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			// Skip parameters up to the final byte (0x40-0x7e).
			i += 2
			for i < len(s) && (s[i] < 0x40 || s[i] > 0x7e) {
				i++
			}
			i++
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n++
	}
	return n
}
