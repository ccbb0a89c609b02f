package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/keepconf/internal/codec"
	"github.com/roach88/keepconf/internal/digest"
	"github.com/roach88/keepconf/internal/schema"
)

// Export encodings.
const (
	EncodingJSON = "json"
	EncodingCBOR = "cbor"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	InputOptions
	Encoding string
	Output   string
}

// ExportResult describes a written export file.
type ExportResult struct {
	Path         string `json:"path"`
	Encoding     string `json:"encoding"`
	Bytes        int    `json:"bytes"`
	ConfigDigest string `json:"config_digest"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the resolved configuration in a deterministic encoding",
		Long: `Check a configuration and write its resolved form: every binding with
its effective name, listen bindings with their address. The same document
always produces the same bytes, whatever syntax it was written in.

JSON output is canonical (RFC 8785); CBOR output uses core deterministic
encoding (RFC 8949). Without --output the document is written to stdout.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Encoding, "encoding", EncodingJSON, "output encoding (json|cbor)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, args []string) error {
	formatter := opts.formatter(cmd)

	if opts.Encoding != EncodingJSON && opts.Encoding != EncodingCBOR {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid encoding %q: must be json or cbor", opts.Encoding))
	}

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

	configDigest, err := digest.Config(c.Config())
	if err != nil {
		return WrapExitError(ExitCommandError, "digest configuration", err)
	}
	data, err := encodeExport(c.Config(), opts.Encoding)
	if err != nil {
		return WrapExitError(ExitCommandError, "encode configuration", err)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(opts.Output, data, 0644); err != nil {
		return WrapExitError(ExitCommandError, "write export", err)
	}

	result := ExportResult{
		Path:         opts.Output,
		Encoding:     opts.Encoding,
		Bytes:        len(data),
		ConfigDigest: configDigest,
	}
	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ wrote %d bytes (%s) to %s\n", result.Bytes, result.Encoding, result.Path)
	return nil
}

func encodeExport(cfg *schema.Config, encoding string) ([]byte, error) {
	if encoding == EncodingCBOR {
		return codec.EncodeConfig(cfg)
	}
	data, err := digest.MarshalCanonical(schema.Resolve(cfg))
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
