package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// Prompter implements OptionPrompter using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter constructs a prompter referencing stdio.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Enabled indicates the prompter is interactive.
func (p *Prompter) Enabled() bool {
	return true
}

// SelectOption prints the clarification question and reads the user's pick.
// An empty line or "s" skips the question, letting the service apply its
// default resolution.
func (p *Prompter) SelectOption(question domain.ClarificationQuestion) (string, bool, error) {
	fmt.Fprintf(p.out, "\n%s\n", question.Message)
	if question.WorkflowContext != "" {
		fmt.Fprintf(p.out, "Workflow: %s\n", question.WorkflowContext)
	}
	for i, opt := range question.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		fmt.Fprintf(p.out, "  %d) %s", i+1, label)
		if opt.Description != "" {
			fmt.Fprintf(p.out, " - %s", opt.Description)
		}
		fmt.Fprintln(p.out)
	}
	fmt.Fprintf(p.out, "Select an option [1-%d], or press Enter to skip: ", len(question.Options))

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false, err
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.EqualFold(line, "s") || strings.EqualFold(line, "skip") {
		return "", true, nil
	}

	idx, err := strconv.Atoi(line)
	if err != nil || idx < 1 || idx > len(question.Options) {
		return "", false, fmt.Errorf("invalid selection %q", line)
	}
	return question.Options[idx-1].Value, false, nil
}

var _ ports.OptionPrompter = (*Prompter)(nil)
