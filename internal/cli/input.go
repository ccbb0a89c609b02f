package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/keepconf/internal/loader"
	"github.com/roach88/keepconf/internal/schema"
	"github.com/roach88/keepconf/internal/validate"
)

// InputOptions holds the flags shared by commands that read and check a
// configuration file.
type InputOptions struct {
	Syntax      string   // empty: infer from extension
	Protocols   []string // empty: schema.DefaultProtocols
	NamePattern string
}

func (in *InputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.Syntax, "syntax", "", "input syntax (toml|yaml|json|cue|hcl); inferred from the extension when unset")
	cmd.Flags().StringArrayVar(&in.Protocols, "protocol", nil, "recognized protocol, repeatable; replaces the default set (tcp, tls)")
	cmd.Flags().StringVar(&in.NamePattern, "name-pattern", "", "regular expression every binding name must match")
}

// checked is a configuration that has been loaded and checked.
type checked struct {
	Path       string
	Result     *loader.Result
	Violations validate.Violations
}

func (c *checked) Config() *schema.Config {
	return c.Result.Config
}

// load reads and checks the configuration at path (or Keep.toml).
// Load failures are *loader.LoadError; bad flags are plain errors.
func (in *InputOptions) load(args []string, logger *slog.Logger) (*checked, error) {
	path := loader.DefaultFileName
	if len(args) > 0 {
		path = args[0]
	}

	lopts := []loader.Option{loader.WithLogger(logger)}
	if in.Syntax != "" {
		format, err := loader.ParseFormat(in.Syntax)
		if err != nil {
			return nil, err
		}
		lopts = append(lopts, loader.WithFormat(format))
	}

	v, err := in.validator()
	if err != nil {
		return nil, err
	}

	res, err := loader.New(lopts...).Load(path)
	if err != nil {
		return nil, err
	}

	vs := v.Check(res.Config)
	logger.Debug("checked configuration", "path", path, "files", len(res.Config.Files), "violations", len(vs))

	return &checked{Path: path, Result: res, Violations: vs}, nil
}

// format is the syntax path is read as: --syntax when set, else the
// extension. Empty when neither names a known format.
func (in *InputOptions) format(path string) loader.Format {
	if in.Syntax != "" {
		f, _ := loader.ParseFormat(in.Syntax)
		return f
	}
	f, _ := loader.FormatFromPath(path)
	return f
}

func (in *InputOptions) validator() (*validate.Validator, error) {
	var vopts []validate.Option
	if len(in.Protocols) > 0 {
		protocols := make([]schema.Protocol, len(in.Protocols))
		for i, p := range in.Protocols {
			protocols[i] = schema.Protocol(p)
		}
		vopts = append(vopts, validate.WithProtocols(protocols...))
	}
	if in.NamePattern != "" {
		re, err := regexp.Compile(in.NamePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid --name-pattern: %w", err)
		}
		vopts = append(vopts, validate.WithNamePattern(re))
	}
	return validate.New(vopts...), nil
}

// reportLoadError prints a load failure and returns the matching exit error.
// Errors that are not load errors (bad flags) are reported with E001.
func reportLoadError(formatter *OutputFormatter, err error) error {
	code, message := loader.ErrCodeGeneric, err.Error()
	var details any

	var loadErr *loader.LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Message
		switch {
		case loadErr.Line > 0:
			message = fmt.Sprintf("%s:%d:%d: %s", loadErr.Path, loadErr.Line, loadErr.Column, message)
			details = map[string]any{"path": loadErr.Path, "line": loadErr.Line, "column": loadErr.Column}
		case loadErr.Path != "" && !strings.Contains(message, loadErr.Path):
			message = fmt.Sprintf("%s: %s", loadErr.Path, message)
		}
	}

	_ = formatter.Error(code, message, details)
	return reportedExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
