// Package formatter renders run summaries as aligned markdown tables.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const minColumnWidth = 3

// RenderTable renders header and rows as a markdown table padded to display
// width. Short rows are padded with empty cells.
func RenderTable(header []string, rows [][]string) string {
	colCount := len(header)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	if colCount == 0 {
		return ""
	}

	widths := make([]int, colCount)

	measure := func(row []string) {
		for i := 0; i < len(row) && i < colCount; i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	measure(header)

	for _, row := range rows {
		measure(row)
	}

	for i := range widths {
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
	}

	var sb strings.Builder

	writeRow(&sb, header, widths)

	sep := make([]string, colCount)
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	writeRow(&sb, sep, widths)

	for _, row := range rows {
		writeRow(&sb, row, widths)
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	sb.WriteString("|")

	for j, width := range widths {
		content := ""
		if j < len(row) {
			content = strings.TrimSpace(row[j])
		}

		sb.WriteString(" ")
		sb.WriteString(content)

		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	sb.WriteString("\n")
}
