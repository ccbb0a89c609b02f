package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/keepconf/internal/schema"
)

// DefaultFileName is the configuration file looked up when no path is given.
const DefaultFileName = "Keep.toml"

// Format names a configuration text syntax.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
	FormatHCL  Format = "hcl"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTOML, FormatYAML, FormatJSON, FormatCUE, FormatHCL}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q: must be one of %v", s, Formats)
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("cannot infer format from %q", filepath.Base(path))
}

// Error code constants - shared with the CLI.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeUnknownFormat = "E002" // Format not given and not inferable
	ErrCodeReadFailed    = "E003" // File read error
	ErrCodeParseFailed   = "E004" // Text syntax error
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeDecodeFailed  = "E006" // Structural decode failure
)

// LoadError represents an error that occurred while loading a configuration.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Line    int // 0 when the parser gave no position
	Column  int
	Err     error
}

func (e *LoadError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Path, e.Line, e.Column, e.Code, e.Message)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Result is a decoded, not yet validated, configuration.
type Result struct {
	Path   string
	Format Format
	Source []byte // raw file contents
	Config *schema.Config
}

// Loader reads configuration files. The zero value is not usable; call New.
type Loader struct {
	logger *slog.Logger
	format Format // empty: infer from path
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithFormat forces a format instead of inferring it from the path.
func WithFormat(format Format) Option {
	return func(l *Loader) {
		l.format = format
	}
}

// New creates a Loader. Without WithLogger, diagnostics are discarded.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, parses and decodes the configuration at path.
func Load(path string) (*Result, error) {
	return New().Load(path)
}

// Load reads, parses and decodes the configuration at path.
// All failures are *LoadError; a structural decode failure wraps the
// underlying *schema.DecodeError.
func (l *Loader) Load(path string) (*Result, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("configuration not found: %s", path), Path: path, Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing configuration: %v", err), Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path), Path: path}
	}

	format := l.format
	if format == "" {
		format, err = FormatFromPath(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeUnknownFormat, Message: err.Error(), Path: path}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading configuration: %v", err), Path: path, Err: err}
	}

	l.logger.Debug("parsing configuration", "path", path, "format", format, "bytes", len(data))

	cfg, err := l.Decode(format, path, data)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("decoded configuration", "path", path, "files", len(cfg.Files))

	return &Result{
		Path:   path,
		Format: format,
		Source: data,
		Config: cfg,
	}, nil
}

// Decode parses data in the given format and decodes it into a Config.
// name is used in error positions only.
func (l *Loader) Decode(format Format, name string, data []byte) (*schema.Config, error) {
	raw, err := Parse(format, name, data)
	if err != nil {
		return nil, err
	}

	cfg, err := schema.Decode(raw)
	if err != nil {
		l.logger.Debug("structural decode failed", "path", name, "error", err)
		return nil, &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error(), Path: name, Err: err}
	}
	return cfg, nil
}

// Parse turns data into the generic mapping schema.Decode consumes.
// Syntax errors are *LoadError with ErrCodeParseFailed.
func Parse(format Format, name string, data []byte) (map[string]any, error) {
	var (
		raw map[string]any
		err error
	)
	switch format {
	case FormatTOML:
		raw, err = parseTOML(name, data)
	case FormatYAML:
		raw, err = parseYAML(name, data)
	case FormatJSON:
		raw, err = parseJSON(name, data)
	case FormatCUE:
		raw, err = parseCUE(name, data)
	case FormatHCL:
		raw, err = parseHCL(name, data)
	default:
		return nil, &LoadError{Code: ErrCodeUnknownFormat, Message: fmt.Sprintf("unsupported format %q", format), Path: name}
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func parseError(name string, line, col int, err error) *LoadError {
	return &LoadError{
		Code:    ErrCodeParseFailed,
		Message: err.Error(),
		Path:    name,
		Line:    line,
		Column:  col,
		Err:     err,
	}
}
