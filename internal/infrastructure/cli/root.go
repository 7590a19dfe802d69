package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/catalystqa/e2eagent/internal/app"
	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/version"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	runCmd := newRunCommand(container)

	root := &cobra.Command{
		Use:   "e2eagent [instruction]",
		Short: "E2E test agent client",
		Long:  "e2eagent submits natural-language test instructions to the orchestration service and follows the run to completion.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			runCmd.SetArgs(args)
			return runCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd)
	root.AddCommand(newStatusCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}

func newRunCommand(container *app.Container) *cobra.Command {
	var (
		clusterIP string
		username  string
		password  string
		choice    string
		skip      bool
		noInput   bool
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run [instruction]",
		Short: "Submit a test instruction and follow it to completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cluster := container.Config.Cluster
			if clusterIP != "" {
				cluster.IP = clusterIP
			}
			if username != "" {
				cluster.Username = username
			}
			if password != "" {
				cluster.Password = password
			}

			spinner := NewSpinner(cmd.ErrOrStderr())
			svc := container.RunService
			if !noInput {
				svc.Prompter = &spinnerPrompter{
					prompter: NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
					spinner:  spinner,
				}
			}

			spinner.SetMessage("submitting instruction...")
			spinner.Start()
			session, err := svc.Submit(ctx, strings.Join(args, " "), cluster)
			spinner.Stop()

			// A pending question in non-interactive mode is answered with
			// the flags, or surfaced for a manual followup.
			if err == nil && session.State == domain.StatusNeedsClarification {
				switch {
				case choice != "":
					spinner.SetMessage("executing test plan...")
					spinner.Start()
					session, err = svc.AnswerClarification(ctx, choice)
					spinner.Stop()
				case skip:
					spinner.SetMessage("executing test plan...")
					spinner.Start()
					session, err = svc.SkipClarification(ctx)
					spinner.Stop()
				default:
					if question := svc.PendingClarification(); question != nil {
						RenderClarification(cmd.OutOrStdout(), *question)
					}
				}
			}

			RenderSession(cmd.OutOrStdout(), session)
			if err != nil {
				return err
			}
			if session.State == domain.StatusFailed {
				return fmt.Errorf("test run failed: %s", session.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&clusterIP, "cluster-ip", "", "Target cluster IP (default from config)")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Cluster username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Cluster password")
	cmd.Flags().StringVar(&choice, "choice", "", "Pre-answer a clarification with this option value")
	cmd.Flags().BoolVar(&skip, "skip-clarification", false, "Resolve clarifications with service defaults")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; report pending clarifications and exit")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall run timeout (0 uses the polling ceiling)")

	return cmd
}

func newStatusCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Fetch the current status of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.RunService.Orchestrator.SessionStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			RenderStatusReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past test runs",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return fmt.Errorf("history store unavailable")
			}
			records, err := container.HistoryStore.Records(limit, "")
			if err != nil {
				return fmt.Errorf("failed to retrieve run records: %w", err)
			}
			RenderHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max runs to show")

	var query string
	var searchLimit int
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search runs by instruction or workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query required")
			}
			if container.HistoryStore == nil {
				return fmt.Errorf("history store unavailable")
			}
			records, err := container.HistoryStore.Records(searchLimit, query)
			if err != nil {
				return fmt.Errorf("failed to search runs: %w", err)
			}
			RenderHistory(cmd.OutOrStdout(), records)
			return nil
		},
	}
	searchCmd.Flags().StringVar(&query, "query", "", "Search keyword")
	searchCmd.Flags().IntVar(&searchLimit, "limit", domain.DefaultHistoryLimit, "Limit search results")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return fmt.Errorf("history store unavailable")
			}
			if err := container.HistoryStore.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			return nil
		},
	}

	historyCmd.AddCommand(listCmd, searchCmd, clearCmd)
	return historyCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "e2eagent version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			}
			if version.BuildDate != "" {
				fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
			}
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			return nil
		},
	}
}

// spinnerPrompter pauses the spinner while the user answers a question so
// the prompt line is not overwritten by animation frames.
type spinnerPrompter struct {
	prompter *Prompter
	spinner  *Spinner
}

func (p *spinnerPrompter) Enabled() bool { return true }

func (p *spinnerPrompter) SelectOption(question domain.ClarificationQuestion) (string, bool, error) {
	p.spinner.Stop()
	choice, skipped, err := p.prompter.SelectOption(question)
	p.spinner.SetMessage("executing test plan...")
	p.spinner.Start()
	return choice, skipped, err
}
