package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepconf/internal/schema"
)

var configsDir = filepath.Join("..", "..", "testdata", "configs")

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// Format parity
// =============================================================================

func TestLoadFormatsAgree(t *testing.T) {
	want, err := Load(filepath.Join(configsDir, "Keep.toml"))
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, want.Format)
	assert.Equal(t, "stdin:stdout:stderr:LISTEN:UPSTREAM", want.Config.FDNames())

	for _, name := range []string{"keep.yaml", "keep.jsonc", "keep.cue", "keep.hcl"} {
		t.Run(name, func(t *testing.T) {
			got, err := Load(filepath.Join(configsDir, name))
			require.NoError(t, err)
			assert.Equal(t, schema.Encode(want.Config), schema.Encode(got.Config))
			assert.NotEmpty(t, got.Source)
		})
	}
}

func TestLoadOriginalExample(t *testing.T) {
	path := writeFile(t, "Keep.toml", `
[[files]]
name = "LISTEN"
kind = "listen"
prot = "tls"
port = 12345
`)

	res, err := Load(path)
	require.NoError(t, err)
	require.Len(t, res.Config.Files, 1)

	l, ok := res.Config.Files[0].(schema.Listen)
	require.True(t, ok)
	assert.Equal(t, "LISTEN", l.Name())
	assert.Equal(t, int64(12345), *l.Port)
	assert.Equal(t, schema.ProtocolTLS, *l.Prot)
}

func TestLoadEmptyFiles(t *testing.T) {
	for _, name := range []string{"empty.toml", "empty.yaml", "empty.json", "empty.hcl"} {
		t.Run(name, func(t *testing.T) {
			res, err := Load(writeFile(t, name, ""))
			require.NoError(t, err)
			assert.Empty(t, res.Config.Files)
		})
	}
}

func TestLoadWithFormatOverride(t *testing.T) {
	path := writeFile(t, "keep.conf", "[[files]]\nkind = \"null\"\n")

	_, err := Load(path)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeUnknownFormat, loadErr.Code)

	res, err := New(WithFormat(FormatTOML)).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "null", res.Config.FDNames())
}

// =============================================================================
// Failures
// =============================================================================

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Contains(t, loadErr.Message, "not found")
}

func TestLoadDirectory(t *testing.T) {
	_, err := Load(t.TempDir())

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Contains(t, loadErr.Message, "not a file")
}

func TestLoadSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantPos bool
	}{
		{"bad.toml", "[[files]]\nkind = \n", true},
		{"bad.json", "{\n  \"files\": [\n    {\"kind\": }\n  ]\n}\n", true},
		{"bad.yaml", "files:\n  - kind: [\n", false},
		{"bad.cue", "files: [\n  {kind: }\n]\n", true},
		{"bad.hcl", "files {\n  kind = \n}\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.name, tt.content))

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %v", err)
			assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
			if tt.wantPos {
				assert.Greater(t, loadErr.Line, 0)
			}
		})
	}
}

func TestLoadStructuralFailureWrapsDecodeError(t *testing.T) {
	path := writeFile(t, "Keep.toml", "[[files]]\nkind = \"socket\"\n")

	_, err := Load(path)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeDecodeFailed, loadErr.Code)

	var decErr *schema.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "files[0].kind", decErr.Path)
}

func TestLoadRejectsFloatPort(t *testing.T) {
	for name, content := range map[string]string{
		"Keep.toml": "[[files]]\nname = \"L\"\nkind = \"listen\"\nport = 80.5\n",
		"keep.json": `{"files": [{"name": "L", "kind": "listen", "port": 80.0}]}`,
		"keep.cue":  `files: [{name: "L", kind: "listen", port: 80.0}]`,
		"keep.hcl":  "files {\n  name = \"L\"\n  kind = \"listen\"\n  port = 80.5\n}\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, name, content))

			var decErr *schema.DecodeError
			require.True(t, errors.As(err, &decErr), "got %v", err)
			assert.Equal(t, "files[0].port", decErr.Path)
		})
	}
}

func TestLoadCUENonConcrete(t *testing.T) {
	_, err := Load(writeFile(t, "keep.cue", "files: [{kind: string}]\n"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
}

func TestLoadErrorFormat(t *testing.T) {
	err := &LoadError{Code: ErrCodeParseFailed, Message: "unexpected token", Path: "Keep.toml", Line: 3, Column: 7}
	assert.Equal(t, "Keep.toml:3:7: E004: unexpected token", err.Error())

	err = &LoadError{Code: ErrCodeNotFound, Message: "configuration not found: x", Path: "x"}
	assert.Equal(t, "x: E005: configuration not found: x", err.Error())

	err = &LoadError{Code: ErrCodeGeneric, Message: "boom"}
	assert.Equal(t, "E001: boom", err.Error())
}

func TestLoadHCLFilesAttribute(t *testing.T) {
	path := writeFile(t, "keep.hcl", `
files = [
  { kind = "null" },
  { name = "L", kind = "listen", port = 8080 },
]
`)

	res, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "null:L", res.Config.FDNames())
}

func TestLoadHCLRejectsBlockShapes(t *testing.T) {
	tests := map[string]string{
		"labels":    "files \"x\" {\n  kind = \"null\"\n}\n",
		"duplicate": "env {\n  A = \"1\"\n}\nenv {\n  B = \"2\"\n}\n",
		"variable":  "args = [var.x]\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "keep.hcl", content))

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %v", err)
			assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
			assert.Greater(t, loadErr.Line, 0)
		})
	}
}

// =============================================================================
// Formats
// =============================================================================

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"Keep.toml":        FormatTOML,
		"keep.YAML":        FormatYAML,
		"keep.yml":         FormatYAML,
		"keep.json":        FormatJSON,
		"keep.jsonc":       FormatJSON,
		"dir/sub/keep.cue": FormatCUE,
		"keep.hcl":         FormatHCL,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("Keepfile")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TOML")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = ParseFormat("ini")
	assert.ErrorContains(t, err, "unknown format")
}

func TestLineCol(t *testing.T) {
	data := []byte("ab\ncd\nef")
	line, col := lineCol(data, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = lineCol(data, 100)
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, col)
}
