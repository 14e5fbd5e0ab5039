package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// printTable renders rows under a bold header, padding every column to its widest cell.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		color.New(color.FgYellow).Fprintln(w, "Nothing to show.")
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := color.New(color.Bold)
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = bold.Sprint(pad(h, widths[i]))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))

	for _, row := range rows {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = pad(cell, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
