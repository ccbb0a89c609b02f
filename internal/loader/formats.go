package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// parseTOML decodes TOML. Integers arrive as int64, arrays of tables as []any.
func parseTOML(name string, data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			line, col := decErr.Position()
			return nil, parseError(name, line, col, err)
		}
		return nil, parseError(name, 0, 0, err)
	}
	return raw, nil
}

// parseYAML decodes YAML. Integers arrive as int.
func parseYAML(name string, data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, parseError(name, 0, 0, err)
	}
	return raw, nil
}

// parseJSON decodes JSON, tolerating comments and trailing commas.
// Numbers arrive as json.Number so floats can be told apart from integers.
func parseJSON(name string, data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	stripped := jsonc.ToJSON(data)
	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			line, col := lineCol(stripped, syntaxErr.Offset)
			return nil, parseError(name, line, col, err)
		}
		return nil, parseError(name, 0, 0, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, parseError(name, 0, 0, fmt.Errorf("unexpected data after top-level object"))
	}
	return raw, nil
}

// lineCol converts a byte offset into a 1-based line and column.
func lineCol(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// parseCUE evaluates a CUE file and walks the concrete result into Go values.
// The whole file must evaluate to concrete data; constraints and
// definitions are allowed as long as they are satisfied.
func parseCUE(name string, data []byte) (map[string]any, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, cueError(name, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(name, err)
	}

	out, err := cueToGo(v)
	if err != nil {
		return nil, cueError(name, err)
	}
	raw, ok := out.(map[string]any)
	if !ok {
		return nil, parseError(name, 0, 0, fmt.Errorf("top-level value must be a struct"))
	}
	return raw, nil
}

// cueToGo converts a concrete CUE value into string/int64/float64/bool/nil,
// []any and map[string]any. Floats are passed through so that the schema
// reports them as structural errors with a field path.
func cueToGo(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		m := map[string]any{}
		for iter.Next() {
			val, err := cueToGo(iter.Value())
			if err != nil {
				return nil, err
			}
			m[iter.Label()] = val
		}
		return m, nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		list := []any{}
		for iter.Next() {
			val, err := cueToGo(iter.Value())
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		return list, nil
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.BoolKind:
		return v.Bool()
	case cue.NullKind:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported CUE value kind %v", v.Kind())
	}
}

// cueError keeps the position of the first CUE error.
func cueError(name string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) > 0 {
		if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
			pos := positions[0]
			return parseError(name, pos.Line(), pos.Column(), errs[0])
		}
	}
	return parseError(name, 0, 0, err)
}
