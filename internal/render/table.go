package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cell is a table cell whose rendered form may carry ANSI styling. width is
// the display width of the unstyled text.
type cell struct {
	text  string
	width int
}

func plainCell(s string) cell {
	return cell{text: s, width: displayWidth(s)}
}

func formatTable(rows [][]cell) []string {
	colCount := 0
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], c.width)
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}
	return lines
}

func formatRow(row []cell, widths []int) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		c := cell{}
		if i < len(row) {
			c = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(c, widths[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(c cell, width int) string {
	if c.width >= width {
		return c.text
	}
	return c.text + strings.Repeat(" ", width-c.width)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
