package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/keepconf/internal/digest"
	"github.com/roach88/keepconf/internal/loader"
	"github.com/roach88/keepconf/internal/store"
	"github.com/roach88/keepconf/internal/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	InputOptions
	Database string
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid        bool                `json:"valid"`
	Path         string              `json:"path"`
	Files        int                 `json:"files"`
	FDNames      string              `json:"fd_names,omitempty"`
	ConfigDigest string              `json:"config_digest,omitempty"`
	RunID        string              `json:"run_id,omitempty"`
	Violations   validate.Violations `json:"violations,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a configuration and report every violation",
		Long: `Decode a Keep configuration and check every binding.

All violations are reported together: duplicate names, missing or
forbidden fields, ports outside 1-65535, unknown protocols, empty hosts
and malformed names or addresses. Reads Keep.toml when no path is given.

With --db, the run is recorded in a SQLite history (see "keepconf history").

Example:
  keepconf validate
  keepconf validate deploy/keep.yaml --protocol tcp --protocol tls --protocol quic
  keepconf validate Keep.toml --db ./keepconf.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, args []string) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(formatter.GetErrWriter())

	c, err := opts.load(args, logger)
	if err != nil {
		if opts.Database != "" {
			recordLoadFailure(cmd.Context(), opts.Database, &opts.InputOptions, args, err, logger)
		}
		return reportLoadError(formatter, err)
	}

	result := ValidationResult{
		Valid:      len(c.Violations) == 0,
		Path:       c.Path,
		Files:      len(c.Config().Files),
		Violations: c.Violations,
	}

	configDigest, err := digest.Config(c.Config())
	if err != nil {
		return reportLoadError(formatter, err)
	}
	if result.Valid {
		result.FDNames = c.Config().FDNames()
		result.ConfigDigest = configDigest
	}
	logger.Debug("digests", "config", configDigest, "source", digest.Source(c.Result.Source))

	if opts.Database != "" {
		run := &store.Run{
			Source:       c.Path,
			Format:       string(c.Result.Format),
			SourceDigest: digest.Source(c.Result.Source),
			ConfigDigest: configDigest,
			Accepted:     result.Valid,
			Violations:   c.Violations,
		}
		if err := writeRun(cmd.Context(), opts.Database, run, logger); err != nil {
			_ = formatter.Error(loader.ErrCodeGeneric, err.Error(), nil)
			return reportedExitError(ExitCommandError, err.Error())
		}
		result.RunID = run.ID
	}

	if !result.Valid {
		return outputViolations(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// writeRun opens the history database, records run, and closes it.
func writeRun(ctx context.Context, path string, run *store.Run, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(ctx, path, store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open history %s: %w", path, err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := st.WriteRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	logger.Info("recorded run", "id", run.ID, "seq", run.Seq)
	return nil
}

// recordLoadFailure records a file that could not be loaded. Failures to
// record are logged; the load error is what the user needs to see.
func recordLoadFailure(ctx context.Context, path string, in *InputOptions, args []string, loadErr error, logger *slog.Logger) {
	source := loader.DefaultFileName
	if len(args) > 0 {
		source = args[0]
	}
	format := in.format(source)

	var le *loader.LoadError
	if !errors.As(loadErr, &le) {
		return // flag error, nothing was read
	}

	run := &store.Run{Source: source, Format: string(format), Error: le.Error()}
	if err := writeRun(ctx, path, run, logger); err != nil {
		logger.Warn("could not record failed run", "error", err)
	}
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid (%d files)\n", result.Path, result.Files)
	fmt.Fprintf(formatter.Writer, "FD_NAMES=%s\n", result.FDNames)
	if result.RunID != "" {
		fmt.Fprintf(formatter.Writer, "recorded run %s\n", result.RunID)
	}
	return nil
}

// outputViolations outputs a rejected document and returns ExitFailure.
func outputViolations(formatter *OutputFormatter, result ValidationResult) error {
	vs := result.Violations
	message := fmt.Sprintf("validation failed with %d violation(s)", len(vs))

	if formatter.IsJSON() {
		if err := formatter.Failure(vs[0].Code, message, result); err != nil {
			return err
		}
		return reportedExitError(ExitFailure, message)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", result.Path, message)
	fmt.Fprintln(formatter.Writer)
	for _, v := range vs {
		fmt.Fprintf(formatter.Writer, "  %s\n", v.Error())
	}
	if result.RunID != "" {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintf(formatter.Writer, "recorded run %s\n", result.RunID)
	}

	return reportedExitError(ExitFailure, message)
}
