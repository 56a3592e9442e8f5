package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
	colorWhite = "\033[37m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string   { return color(colorRed, text) }
func blue(text string) string  { return color(colorBlue, text) }
func cyan(text string) string  { return color(colorCyan, text) }
func white(text string) string { return color(colorWhite, text) }
func gray(text string) string  { return color(colorGray, text) }
func bold(text string) string  { return color(colorBold, text) }

// Format returns the diagnostic formatted for terminal display.
func (d *Diagnostic) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if d.Code != "" {
		b.WriteString(red(bold("ERROR ")))
		b.WriteString(white(bold(d.Code + ": ")))
		b.WriteString(white(d.Message))
	} else {
		b.WriteString(red(bold("ERROR: ")))
		b.WriteString(white(d.Message))
	}
	b.WriteString("\n\n")

	if d.Location != nil {
		b.WriteString("  ")
		b.WriteString(cyan(d.Location.String()))
		b.WriteString("\n\n")
	}

	if d.Detail != "" {
		for _, line := range wrapText(d.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if d.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(gray("Cause: "))
		b.WriteString(d.Wrapped.Error())
		b.WriteString("\n\n")
	}

	if d.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(d.Suggestion)
		b.WriteString("\n\n")
	}

	if d.DocURL != "" {
		b.WriteString("  ")
		b.WriteString(gray("Learn more: "))
		b.WriteString(blue(d.DocURL))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a single-line form.
func (d *Diagnostic) FormatCompact() string {
	var b strings.Builder

	if d.Location != nil {
		b.WriteString(d.Location.String())
		b.WriteString(": ")
	}
	b.WriteString(d.Error())

	return b.String()
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

type jsonDiagnostic struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	DocURL     string        `json:"docUrl,omitempty"`
	Cause      string        `json:"cause,omitempty"`
}

// FormatJSON returns the diagnostic as a JSON object.
func (d *Diagnostic) FormatJSON() string {
	out := jsonDiagnostic{
		Code:       d.Code,
		Category:   d.Category,
		Message:    d.Message,
		Detail:     d.Detail,
		Suggestion: d.Suggestion,
		DocURL:     d.DocURL,
	}
	if d.Location != nil {
		out.Location = &jsonLocation{File: d.Location.File, Line: d.Location.Line, Column: d.Location.Column}
	}
	if d.Wrapped != nil {
		out.Cause = d.Wrapped.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, d.Error())
	}
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Fprint writes err to w, formatted if it is or wraps a Diagnostic.
func Fprint(w io.Writer, err error) {
	var d *Diagnostic
	if stderrors.As(err, &d) {
		fmt.Fprint(w, d.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red(bold("ERROR:")), err.Error())
}

// PrintError prints err to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
