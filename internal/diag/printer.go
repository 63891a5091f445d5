package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Printer renders diagnostics with a source line and a caret pointing at
// the offending column, recoloured through fatih/color instead of
// hand-written ANSI escapes.
type Printer struct {
	Source  string
	errFmt  *color.Color
	warnFmt *color.Color
	dim     *color.Color
}

// NewPrinter builds a Printer over the given source text. NoColor forces
// plain-text output regardless of terminal detection (used by --no-color
// and by golden-file tests, which must not embed escape codes).
func NewPrinter(source string, noColor bool) *Printer {
	p := &Printer{
		Source:  source,
		errFmt:  color.New(color.FgRed, color.Bold),
		warnFmt: color.New(color.FgYellow, color.Bold),
		dim:     color.New(color.Faint),
	}
	if noColor {
		p.errFmt.DisableColor()
		p.warnFmt.DisableColor()
		p.dim.DisableColor()
	}
	return p
}

// Format renders one diagnostic as a multi-line string.
func (p *Printer) Format(d Diagnostic) string {
	var sb strings.Builder

	sevColor := p.warnFmt
	if d.Severity == Error {
		sevColor = p.errFmt
	}

	header := fmt.Sprintf("%s: %s", d.Severity, d.Message)
	if d.Span.File != "" {
		header = fmt.Sprintf("%s:%s: %s", d.Span.File, d.Span.Start, header)
	}
	sb.WriteString(sevColor.Sprint(header))
	sb.WriteString("\n")

	if line := p.sourceLine(d.Span.Start.Line); line != "" {
		lineNum := fmt.Sprintf("%4d | ", d.Span.Start.Line)
		sb.WriteString(p.dim.Sprint(lineNum))
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNum)+max0(d.Span.Start.Column-1)))
		sb.WriteString(sevColor.Sprint("^"))
		sb.WriteString("\n")
	}

	if d.Secondary != nil {
		sb.WriteString(p.dim.Sprintf("  %s: %s:%s\n", d.SecondMsg, d.Secondary.File, d.Secondary.Start))
		if line := p.sourceLine(d.Secondary.Start.Line); line != "" {
			lineNum := fmt.Sprintf("%4d | ", d.Secondary.Start.Line)
			sb.WriteString(p.dim.Sprint(lineNum))
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// FormatAll renders every diagnostic in a sink, separated by blank lines.
func (p *Printer) FormatAll(diags []Diagnostic) string {
	parts := make([]string, 0, len(diags))
	for _, d := range diags {
		parts = append(parts, p.Format(d))
	}
	return strings.Join(parts, "\n")
}

// WriteAll writes every diagnostic in a sink to w.
func (p *Printer) WriteAll(w io.Writer, diags []Diagnostic) {
	fmt.Fprint(w, p.FormatAll(diags))
}

func (p *Printer) sourceLine(lineNum int) string {
	if lineNum < 1 {
		return ""
	}
	lines := strings.Split(p.Source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
