package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/forty96/internal/harness"
	"github.com/roach88/forty96/internal/journal"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Journal bool
}

// TestCaseResult is one checked move in JSON output.
type TestCaseResult struct {
	Path    string `json:"path"`
	Pass    bool   `json:"pass"`
	Message string `json:"message,omitempty"`
}

// TestSummary is the JSON payload of the test command.
type TestSummary struct {
	Results  []TestCaseResult `json:"results"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	Sessions map[int]string   `json:"sessions,omitempty"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenario.yaml...]",
		Short: "Run the move-engine self test",
		Long: `Run move scenarios against the engine.

A scenario is a tree of board states: every node lists, per direction, the
state the move must produce or the error it must fail with. Without
arguments the built-in scenarios run.

Examples:
  forty96 test
  forty96 test --journal
  forty96 test ./my-scenario.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.Journal, "journal", false, "record every tile write in an in-memory journal")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, args []string) error {
	f := opts.formatter(cmd)

	scenarios, err := loadScenarios(args)
	if err != nil {
		f.Error("load_error", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}
	f.VerboseLog("Loaded %d scenario(s)", len(scenarios))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runOpts := []harness.Option{harness.WithLogger(slog.Default())}
	var j *journal.Journal
	if opts.Journal {
		j, err = journal.Open(journal.WithLogger(slog.Default()))
		if err != nil {
			return WrapExitError(ExitFailure, "failed to open journal", err)
		}
		defer j.Close()
		runOpts = append(runOpts, harness.WithJournal(j))
	}

	report, err := harness.Run(ctx, scenarios, runOpts...)
	if err != nil {
		f.EngineError(err)
		return WrapExitError(ExitFailure, "self test aborted", err)
	}

	if f.Format == "json" {
		summary := TestSummary{Results: []TestCaseResult{}, Sessions: report.Sessions}
		for _, res := range report.All() {
			tc := TestCaseResult{Path: res.Path(), Pass: res.Pass}
			if !res.Pass {
				tc.Message = res.Message
				summary.Failed++
			} else {
				summary.Passed++
			}
			summary.Results = append(summary.Results, tc)
		}
		if summary.Failed > 0 {
			f.encode(Response{
				Status: "error",
				Data:   summary,
				Error: &ResponseError{
					Code:    "test_failed",
					Message: fmt.Sprintf("%d check(s) failed", summary.Failed),
				},
			})
		} else if err := f.Success(summary); err != nil {
			return err
		}
	} else {
		if err := report.Render(f.Writer, isTerminal(f.Writer)); err != nil {
			return err
		}
		if j != nil {
			if err := printJournalSessions(ctx, f, j); err != nil {
				return err
			}
		}
	}

	if n := report.Failures(); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", n))
	}
	return nil
}

func loadScenarios(paths []string) ([]*harness.Scenario, error) {
	if len(paths) == 0 {
		return harness.Builtin()
	}
	scenarios := make([]*harness.Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := harness.LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func printJournalSessions(ctx context.Context, f *OutputFormatter, j *journal.Journal) error {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		fmt.Fprintf(f.Writer, "journal %s: %dx%d, %d tile writes\n", s.Token, s.Size, s.Size, s.Events)
	}
	return nil
}
