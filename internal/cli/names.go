package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/keepconf/internal/schema"
)

// NamesOptions holds flags for the names command.
type NamesOptions struct {
	*RootOptions
	InputOptions
	Default bool
}

// NamesResult is the descriptor naming exported to the application.
type NamesResult struct {
	Names   []string `json:"names"`
	FDNames string   `json:"fd_names"`
}

// NewNamesCommand creates the names command.
func NewNamesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NamesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "names [path]",
		Short: "Print FD_NAMES for a valid configuration",
		Long: `Print the colon-separated descriptor names the application receives
in FD_NAMES, in descriptor order. The configuration must be valid.

With --default, prints the names of the built-in configuration
(stdin, stdout, stderr) without reading a file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNames(cmd, opts, args)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.Default, "default", false, "use the built-in default configuration")

	return cmd
}

func runNames(cmd *cobra.Command, opts *NamesOptions, args []string) error {
	formatter := opts.formatter(cmd)

	var cfg *schema.Config
	if opts.Default {
		if len(args) > 0 {
			return NewExitError(ExitCommandError, "--default takes no path")
		}
		cfg = schema.Default()
	} else {
		c, err := opts.load(args, opts.logger(formatter.GetErrWriter()))
		if err != nil {
			return reportLoadError(formatter, err)
		}
		if len(c.Violations) > 0 {
			return outputViolations(formatter, ValidationResult{
				Path:       c.Path,
				Files:      len(c.Config().Files),
				Violations: c.Violations,
			})
		}
		cfg = c.Config()
	}

	result := NamesResult{Names: cfg.Names(), FDNames: cfg.FDNames()}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.FDNames)
	return nil
}
