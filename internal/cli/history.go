package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/keepconf/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Run      string
}

// HistoryResult lists recorded runs.
type HistoryResult struct {
	Runs []store.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List validation runs recorded with validate --db",
		Long: `List recorded validation runs, most recent first.

With --run, show one run and every violation it reported.

Example:
  keepconf history --db ./keepconf.db --limit 5
  keepconf history --db ./keepconf.db --run 3f0c...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show a single run by id")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(formatter.GetErrWriter())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Opening creates the file; listing a database that was never
	// written is almost always a typo in --db.
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(ctx, opts.Database, store.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if opts.Run != "" {
		run, err := st.ReadRun(ctx, opts.Run)
		if errors.Is(err, store.ErrRunNotFound) {
			return NewExitError(ExitCommandError, fmt.Sprintf("run %q not found", opts.Run))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		return outputRun(formatter, run)
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	return outputRuns(formatter, runs)
}

func outputRuns(formatter *OutputFormatter, runs []store.Run) error {
	if formatter.IsJSON() {
		return formatter.Success(HistoryResult{Runs: runs})
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tRESULT\tVIOLATIONS\tSOURCE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", r.Seq, r.ID, runResult(r), r.ViolationCount, r.Source)
	}
	return tw.Flush()
}

func outputRun(formatter *OutputFormatter, run store.Run) error {
	if formatter.IsJSON() {
		return formatter.Success(run)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "  source:        %s (%s)\n", run.Source, run.Format)
	fmt.Fprintf(w, "  result:        %s\n", runResult(run))
	if run.SourceDigest != "" {
		fmt.Fprintf(w, "  source digest: %s\n", run.SourceDigest)
	}
	if run.ConfigDigest != "" {
		fmt.Fprintf(w, "  config digest: %s\n", run.ConfigDigest)
	}
	if run.Error != "" {
		fmt.Fprintf(w, "  error:         %s\n", run.Error)
	}
	for _, v := range run.Violations {
		fmt.Fprintf(w, "  %s\n", v.Error())
	}
	return nil
}

func runResult(r store.Run) string {
	switch {
	case r.Error != "":
		return "error"
	case r.Accepted:
		return "accepted"
	default:
		return "rejected"
	}
}
