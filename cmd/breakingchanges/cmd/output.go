package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

// printField prints an indented label/value line.
func printField(label string, value interface{}) {
	fmt.Fprintf(outputWriter, "  %s %v\n", runewidth.FillRight(label+":", 16), value)
}

func printOK(format string, args ...interface{}) {
	fmt.Fprintf(outputWriter, "%s %s\n", color.Green.Sprint("OK"), fmt.Sprintf(format, args...))
}

func printFail(format string, args ...interface{}) {
	fmt.Fprintf(outputWriter, "%s %s\n", color.Red.Sprint("FAIL"), fmt.Sprintf(format, args...))
}

// printTable prints rows in aligned columns. Widths are measured in terminal
// cells so area paths with wide characters stay aligned.
func printTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(widths)-1 {
				parts[i] = cell
			} else {
				parts[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		fmt.Fprintf(outputWriter, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	printRow(rule)
	for _, row := range rows {
		printRow(row)
	}
}
