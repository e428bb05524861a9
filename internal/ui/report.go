// Package ui renders validation reports for the console and handles the
// approval prompts for destructive tasks.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vknys/ingot/pkg/ingot"
)

// ReportRenderer writes a validation report to a console writer. Styling
// is suppressed automatically when the writer is not a terminal.
type ReportRenderer struct {
	out   io.Writer
	color bool
}

// NewReportRenderer creates a renderer for out. Color output is enabled
// only when out is os.Stdout or os.Stderr attached to a terminal and
// NO_COLOR is unset.
func NewReportRenderer(out io.Writer) *ReportRenderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
	}
	return &ReportRenderer{out: out, color: color}
}

// Render writes the report: the fatal message or per-row issues first,
// then a one-line summary.
func (r *ReportRenderer) Render(rep *ingot.ValidationReport) {
	if rep == nil {
		return
	}

	fmt.Fprintln(r.out, r.styled(HeaderStyle, fmt.Sprintf("Validation report (run %s)", rep.RunID)))

	if rep.Fatal {
		fmt.Fprintln(r.out, r.styled(ErrorStyle, "FATAL: "+rep.FatalMessage))
	}

	for _, issue := range rep.Issues {
		switch issue.Severity {
		case ingot.SeverityError:
			fmt.Fprintln(r.out, r.styled(ErrorStyle, issue.String()))
		default:
			fmt.Fprintln(r.out, r.styled(WarningStyle, issue.String()))
		}
	}

	summary := fmt.Sprintf("%d errors, %d warnings", rep.ErrorCount(), rep.WarningCount())
	if rep.Pass() {
		fmt.Fprintln(r.out, r.styled(SuccessStyle, "✓ Validation passed: "+summary))
	} else {
		fmt.Fprintln(r.out, r.styled(ErrorStyle, "✗ Validation failed: "+summary))
	}
}

// styled applies style when color output is enabled.
func (r *ReportRenderer) styled(style lipgloss.Style, s string) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}
