package diag

import (
	"fmt"

	"github.com/tesc-lang/tesc/internal/lexer"
)

type Span = lexer.Span

// Severity classifies a Diagnostic. Lints are Warning; everything that
// blocks the phase that produced it is Error.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is a single reported problem: a severity, a primary span, a
// message, and an optional secondary span pointing at related context (for
// instance the original declaration of a constant being reassigned).
type Diagnostic struct {
	Severity  Severity
	Span      Span
	Message   string
	Secondary *Span
	SecondMsg string
}

// Sink accumulates diagnostics in the order they are reported. It is reused
// across the lexer, parser, and analyser for one source file; a fresh Sink
// is never required mid-pipeline because all phases append to the same one.
type Sink struct {
	diags []Diagnostic
}

// NewSink returns an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Error records an error-severity diagnostic.
func (s *Sink) Error(span Span, format string, args ...any) {
	s.add(Error, span, format, args)
}

// Warn records a warning-severity diagnostic (a lint).
func (s *Sink) Warn(span Span, format string, args ...any) {
	s.add(Warning, span, format, args)
}

// ErrorWithSecondary records an error with a secondary span, used for
// "previously declared here"-style context.
func (s *Sink) ErrorWithSecondary(span Span, secondary Span, secondMsg, format string, args ...any) {
	d := s.add(Error, span, format, args)
	d.Secondary = &secondary
	d.SecondMsg = secondMsg
}

func (s *Sink) add(sev Severity, span Span, format string, args []any) *Diagnostic {
	s.diags = append(s.diags, Diagnostic{
		Severity: sev,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
	return &s.diags[len(s.diags)-1]
}

// All returns every diagnostic recorded so far, in report order.
func (s *Sink) All() []Diagnostic {
	return s.diags
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Errors returns only the Error-severity diagnostics.
func (s *Sink) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.diags {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only the Warning-severity diagnostics.
func (s *Sink) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.diags {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}
