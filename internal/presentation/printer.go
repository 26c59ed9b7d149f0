package presentation

import (
	"fmt"
	"io"

	"phofile/internal/app"
	"phofile/internal/domain"
	appErrors "phofile/internal/errors"
)

type Printer struct {
	Writer  io.Writer
	Verbose bool
}

func (p Printer) PrintJob(result app.JobResult) {
	if result.Disabled {
		fmt.Fprintf(p.Writer, "[%s] disabled, skipped\n", result.Section)
		return
	}
	if result.Err != nil {
		fmt.Fprintf(p.Writer, "[%s] %s\n", result.Section, appErrors.UserMessage(result.Err))
	}

	s := result.Summary
	fmt.Fprintf(p.Writer, "[%s] %d transferred, %d skipped, %d failed, %d unresolved\n",
		result.Section, s.Succeeded, s.Skipped, s.Failed, s.Unresolved)

	for _, line := range formatProblemLines(result.Outcomes) {
		fmt.Fprintln(p.Writer, "  "+line)
	}

	if p.Verbose && len(result.Warnings) > 0 {
		fmt.Fprintln(p.Writer, "  Warnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintln(p.Writer, "  - "+warning)
		}
	}
}

func (p Printer) PrintRun(results []app.JobResult) {
	var total app.Summary
	ran := 0
	for _, result := range results {
		if result.Disabled {
			continue
		}
		ran++
		total.Succeeded += result.Summary.Succeeded
		total.Skipped += result.Summary.Skipped
		total.Failed += result.Summary.Failed
		total.Unresolved += result.Summary.Unresolved
	}
	fmt.Fprintf(p.Writer, "Ran %d of %d jobs: %d transferred, %d skipped, %d failed, %d unresolved.\n",
		ran, len(results), total.Succeeded, total.Skipped, total.Failed, total.Unresolved)
}

// formatProblemLines lists failed and unresolved outcomes, keeping the first
// and last two when there are many.
func formatProblemLines(outcomes []domain.Outcome) []string {
	var lines []string
	for _, outcome := range outcomes {
		if outcome.State != domain.Failed && outcome.State != domain.Unresolved {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", outcome.Source, outcome.Text))
	}

	if len(lines) <= 4 {
		return lines
	}
	head := lines[:2]
	tail := lines[len(lines)-2:]
	return append(append(head, fmt.Sprintf("... %d more", len(lines)-4)), tail...)
}
