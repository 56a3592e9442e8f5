package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/bindvar/pkg/binding"
)

// Category represents the type of diagnostic.
type Category string

const (
	CategoryBinding  Category = "binding"
	CategoryConfig   Category = "config"
	CategoryInspect  Category = "inspect"
	CategoryPresence Category = "presence"
	CategoryCLI      Category = "cli"
)

// Location points at the input that caused a diagnostic, such as a config
// file or an environment variable.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	switch {
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return l.File
}

// Diagnostic is a coded error with an explanation and a suggested fix.
type Diagnostic struct {
	// Code is a unique identifier (e.g., "B001").
	Code string

	// Category is the subsystem that raised the diagnostic.
	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Location is where the problem was found, if known.
	Location *Location

	// Suggestion is a hint on how to fix the problem.
	Suggestion string

	// DocURL links to documentation about this code.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	msg := d.Message
	if d.Code != "" {
		msg = d.Code + ": " + msg
	}
	if d.Wrapped != nil {
		msg += ": " + d.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (d *Diagnostic) Unwrap() error {
	return d.Wrapped
}

// WithLocation records the file position of the problem.
func (d *Diagnostic) WithLocation(file string, line, column int) *Diagnostic {
	d.Location = &Location{File: file, Line: line, Column: column}
	return d
}

// WithSuggestion adds a fix suggestion.
func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestion = s
	return d
}

// WithDetail replaces the registered explanation.
func (d *Diagnostic) WithDetail(detail string) *Diagnostic {
	d.Detail = detail
	return d
}

// Wrap wraps another error.
func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.Wrapped = err
	return d
}

// New creates a Diagnostic from a registered code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Diagnostic{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates an uncoded Diagnostic with a formatted message.
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError converts err into a Diagnostic. A Diagnostic anywhere in the
// chain is returned as is; binding engine errors map to their codes; anything
// else is wrapped under fallback.
func FromError(err error, fallback string) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d
	}
	switch {
	case stderrors.Is(err, binding.ErrCycle):
		return New(CodeCycle).Wrap(err)
	case stderrors.Is(err, binding.ErrContextClosed):
		return New(CodeContextMisuse).Wrap(err)
	case stderrors.Is(err, binding.ErrCompute):
		return New(CodeCompute).Wrap(err)
	}
	return New(fallback).Wrap(err)
}
