// Package cli provides the command-line interface for the hedging analyzer.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"portfolio-hedger/internal/models"
)

var (
	boldText    = color.New(color.Bold)
	successText = color.New(color.FgGreen)
	errorText   = color.New(color.FgRed)
	warnText    = color.New(color.FgYellow)
	infoText    = color.New(color.FgCyan)
	dimText     = color.New(color.Faint)
)

// Output handles formatted output for the CLI. Human and JSON renderings
// carry identical numeric content; both carry the educational disclaimer.
type Output struct {
	writer   io.Writer
	jsonMode bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:   cmd.OutOrStdout(),
		jsonMode: jsonMode,
	}
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// envelope is the machine-parsable rendering: the result plus the mandatory
// disclaimer, never omitted.
type envelope struct {
	Result     interface{} `json:"result"`
	Disclaimer string      `json:"disclaimer"`
}

// JSON outputs data in the standard envelope.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(envelope{Result: data, Disclaimer: models.Disclaimer})
}

// Print prints a formatted message without newline.
func (o *Output) Print(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Bold prints a bold line.
func (o *Output) Bold(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, boldText.Sprintf(format, args...))
}

// Success prints a success line in green.
func (o *Output) Success(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, successText.Sprintf(format, args...))
}

// Error prints an error line in red.
func (o *Output) Error(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, errorText.Sprintf(format, args...))
}

// Warning prints a warning line in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, warnText.Sprintf(format, args...))
}

// Info prints an info line in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, infoText.Sprintf(format, args...))
}

// Dim prints a dimmed line.
func (o *Output) Dim(format string, args ...interface{}) {
	fmt.Fprintln(o.writer, dimText.Sprintf(format, args...))
}

// Green returns green colored text.
func (o *Output) Green(text string) string { return successText.Sprint(text) }

// Red returns red colored text.
func (o *Output) Red(text string) string { return errorText.Sprint(text) }

// Yellow returns yellow colored text.
func (o *Output) Yellow(text string) string { return warnText.Sprint(text) }

// PnL returns a P/L string colored by sign.
func (o *Output) PnL(text string, value float64) string {
	switch {
	case value > 0:
		return o.Green(text)
	case value < 0:
		return o.Red(text)
	default:
		return text
	}
}

// Disclaimer prints the mandatory educational disclaimer. Every human
// rendering ends with it.
func (o *Output) Disclaimer() {
	o.Println()
	o.Dim("%s", models.Disclaimer)
}

// Table renders simple aligned columns.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{headers: headers, output: output}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	var header []string
	for i, h := range t.headers {
		header = append(header, pad(h, widths[i]))
	}
	t.output.Println(boldText.Sprint(strings.Join(header, "  ")))

	var sep []string
	for _, w := range widths {
		sep = append(sep, strings.Repeat("-", w))
	}
	t.output.Println(dimText.Sprint(strings.Join(sep, "  ")))

	for _, row := range t.rows {
		var parts []string
		for i, cell := range row {
			if i < len(widths) {
				parts = append(parts, pad(cell, widths[i]))
			}
		}
		t.output.Println(strings.Join(parts, "  "))
	}
}

var ansiEscapes = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visibleLen measures the printed width of a cell, ignoring color escapes.
func visibleLen(s string) int {
	return len(ansiEscapes.ReplaceAllString(s, ""))
}

func pad(s string, width int) string {
	n := visibleLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
