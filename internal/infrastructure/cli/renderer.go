package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/catalystqa/e2eagent/internal/domain"
)

// RenderSession prints the final state of a test run.
func RenderSession(out io.Writer, session domain.TestSession) {
	fmt.Fprintf(out, "Session: %s\n", session.SessionID)
	fmt.Fprintf(out, "Status:  %s\n", session.State)
	if len(session.Workflows) > 0 {
		fmt.Fprintf(out, "Workflows: %s\n", strings.Join(session.Workflows, ", "))
	}
	if session.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", session.ErrorMessage)
	}

	if len(session.Steps) > 0 {
		fmt.Fprintln(out, "\nSteps:")
		for _, step := range session.Steps {
			marker := stepMarker(step.Status)
			fmt.Fprintf(out, "  %s %s [%s]\n", marker, step.StepID, step.Status)
			if step.ErrorDetails != "" {
				fmt.Fprintf(out, "      %s\n", step.ErrorDetails)
			}
		}
		passed := 0
		for _, step := range session.Steps {
			if step.Status == domain.StepPassed {
				passed++
			}
		}
		fmt.Fprintf(out, "\n%d/%d steps passed\n", passed, len(session.Steps))
	}
}

// RenderClarification prints a pending question without prompting, for
// non-interactive runs that need the user to answer in a followup command.
func RenderClarification(out io.Writer, question domain.ClarificationQuestion) {
	fmt.Fprintf(out, "\nClarification required: %s\n", question.Message)
	for _, opt := range question.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		fmt.Fprintf(out, "  %s: %s\n", opt.Value, label)
	}
}

// RenderStatusReport prints one poll response.
func RenderStatusReport(out io.Writer, report domain.StatusReport) {
	fmt.Fprintf(out, "Session: %s\n", report.SessionID)
	fmt.Fprintf(out, "Status:  %s\n", report.Status)
	fmt.Fprintf(out, "Progress: %d%%\n", report.Progress)
	if report.CurrentWorkflow != "" {
		fmt.Fprintf(out, "Current workflow: %s\n", report.CurrentWorkflow)
	}
	if report.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", report.ErrorMessage)
	}
	for _, step := range report.Steps {
		fmt.Fprintf(out, "  %s %s [%s]\n", stepMarker(step.Status), step.StepID, step.Status)
	}
}

// RenderHistory prints run records, newest first.
func RenderHistory(out io.Writer, records []domain.RunRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(out, "%s | %s | %s | %d/%d passed | %s\n",
			rec.Timestamp.Format(time.DateTime),
			rec.Status,
			rec.Workflows,
			rec.StepsPassed,
			rec.StepsTotal,
			rec.Instruction)
		if rec.ErrorMsg != "" {
			fmt.Fprintf(out, "  error: %s\n", rec.ErrorMsg)
		}
	}
}

func stepMarker(status domain.StepStatus) string {
	switch status {
	case domain.StepPassed:
		return "[ok]"
	case domain.StepFailed:
		return "[!!]"
	default:
		return "[--]"
	}
}
