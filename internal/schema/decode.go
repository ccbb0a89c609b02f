package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DecodeError is a structural failure: the input cannot be interpreted as a
// document at all. Path locates the offending value, e.g. "files[2].port".
type DecodeError struct {
	Path    string
	Message string
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func decodeErr(path, format string, args ...any) *DecodeError {
	return &DecodeError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// Document keys.
const (
	keyEnv     = "env"
	keyArgs    = "args"
	keyFiles   = "files"
	keySteward = "steward"
)

// Decode builds a Config from the generic mapping produced by a text
// deserializer. Absent env, args and files decode as empty.
//
// Decode fails on the first structural problem: an unknown key, a value of
// the wrong primitive type, a float or null, a missing or unknown kind tag,
// or a steward that is not an absolute URL. Semantic problems such as a
// missing port are left for the validator.
func Decode(raw map[string]any) (*Config, error) {
	cfg := &Config{
		Env:   map[string]string{},
		Args:  []string{},
		Files: []File{},
	}

	for _, key := range sortedKeys(raw) {
		val := raw[key]
		switch key {
		case keyEnv:
			env, err := decodeEnv(val)
			if err != nil {
				return nil, err
			}
			cfg.Env = env
		case keyArgs:
			args, err := decodeArgs(val)
			if err != nil {
				return nil, err
			}
			cfg.Args = args
		case keyFiles:
			files, err := decodeFiles(val)
			if err != nil {
				return nil, err
			}
			cfg.Files = files
		case keySteward:
			u, err := decodeSteward(val)
			if err != nil {
				return nil, err
			}
			cfg.Steward = u
		default:
			return nil, decodeErr(key, "unknown key")
		}
	}

	return cfg, nil
}

func decodeEnv(val any) (map[string]string, error) {
	m, ok := val.(map[string]any)
	if !ok {
		return nil, decodeErr(keyEnv, "expected table, got %s", typeName(val))
	}
	env := make(map[string]string, len(m))
	// Env keys must stay distinct under NFC.
	seen := make(map[string]string, len(m))
	for _, k := range sortedKeys(m) {
		v := m[k]
		s, ok := v.(string)
		if !ok {
			return nil, decodeErr(keyEnv+"."+k, "expected string, got %s", typeName(v))
		}
		nk := norm.NFC.String(k)
		if prev, dup := seen[nk]; dup {
			return nil, decodeErr(keyEnv+"."+k, "key is the same as %q after Unicode normalization", prev)
		}
		seen[nk] = k
		env[k] = s
	}
	return env, nil
}

func decodeArgs(val any) ([]string, error) {
	switch list := val.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		args := make([]string, len(list))
		for i, v := range list {
			s, ok := v.(string)
			if !ok {
				return nil, decodeErr(fmt.Sprintf("%s[%d]", keyArgs, i), "expected string, got %s", typeName(v))
			}
			args[i] = s
		}
		return args, nil
	default:
		return nil, decodeErr(keyArgs, "expected array, got %s", typeName(val))
	}
}

func decodeFiles(val any) ([]File, error) {
	var entries []any
	switch list := val.(type) {
	case []any:
		entries = list
	case []map[string]any:
		entries = make([]any, len(list))
		for i, m := range list {
			entries[i] = m
		}
	default:
		return nil, decodeErr(keyFiles, "expected array of tables, got %s", typeName(val))
	}

	files := make([]File, len(entries))
	for i, e := range entries {
		path := fmt.Sprintf("%s[%d]", keyFiles, i)
		m, ok := e.(map[string]any)
		if !ok {
			return nil, decodeErr(path, "expected table, got %s", typeName(e))
		}
		f, err := decodeFile(path, m)
		if err != nil {
			return nil, err
		}
		files[i] = f
	}
	return files, nil
}

func decodeSteward(val any) (*url.URL, error) {
	s, ok := val.(string)
	if !ok {
		return nil, decodeErr(keySteward, "expected string, got %s", typeName(val))
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, decodeErr(keySteward, "invalid URL: %v", err)
	}
	if !u.IsAbs() {
		return nil, decodeErr(keySteward, "relative URL without a base: %q", s)
	}
	return u, nil
}

// DecodeFile builds a single binding from one entry mapping.
func DecodeFile(raw map[string]any) (File, error) {
	return decodeFile("", raw)
}

func decodeFile(path string, raw map[string]any) (File, error) {
	at := func(f Field) string {
		if path == "" {
			return string(f)
		}
		return path + "." + string(f)
	}

	for _, key := range sortedKeys(raw) {
		if !isEntryKey(Field(key)) {
			return nil, decodeErr(at(Field(key)), "unknown key")
		}
	}

	kindVal, ok := raw[string(FieldKind)]
	if !ok {
		return nil, decodeErr(at(FieldKind), "missing field `kind`")
	}
	kindStr, ok := kindVal.(string)
	if !ok {
		return nil, decodeErr(at(FieldKind), "expected string, got %s", typeName(kindVal))
	}
	kind, ok := ParseKind(kindStr)
	if !ok {
		return nil, decodeErr(at(FieldKind), "unknown variant %q, expected one of %s", kindStr, kindList())
	}

	var entry Entry
	if v, ok := raw[string(FieldName)]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, decodeErr(at(FieldName), "expected string, got %s", typeName(v))
		}
		entry.Title = &s
	}

	var params Params
	for _, f := range ParamFields {
		v, ok := raw[string(f)]
		if !ok {
			continue
		}
		if err := setParam(&params, f, v); err != nil {
			return nil, decodeErr(at(f), "%s", err)
		}
	}

	// Split present parameters into declared and stray.
	rule := RuleFor(kind)
	var declared Params
	for _, f := range params.Present() {
		if rule.Allows(f) {
			copyParam(&declared, params, f)
		} else {
			copyParam(&entry.Extra, params, f)
		}
	}

	switch kind {
	case KindNull:
		return Null{entry}, nil
	case KindStdin:
		return Stdin{entry}, nil
	case KindStdout:
		return Stdout{entry}, nil
	case KindStderr:
		return Stderr{entry}, nil
	case KindListen:
		return Listen{Entry: entry, Addr: declared.Addr, Port: declared.Port, Prot: declared.Prot}, nil
	case KindConnect:
		return Connect{Entry: entry, Host: declared.Host, Port: declared.Port, Prot: declared.Prot}, nil
	}
	return nil, decodeErr(at(FieldKind), "unknown variant %q", kindStr)
}

func setParam(p *Params, f Field, v any) error {
	switch f {
	case FieldAddr, FieldHost, FieldProt:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %s", typeName(v))
		}
		switch f {
		case FieldAddr:
			p.Addr = &s
		case FieldHost:
			p.Host = &s
		case FieldProt:
			prot := Protocol(s)
			p.Prot = &prot
		}
	case FieldPort:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		p.Port = &n
	}
	return nil
}

func copyParam(dst *Params, src Params, f Field) {
	switch f {
	case FieldAddr:
		dst.Addr = src.Addr
	case FieldHost:
		dst.Host = src.Host
	case FieldPort:
		dst.Port = src.Port
	case FieldProt:
		dst.Prot = src.Prot
	}
}

// toInt64 accepts every Go integer type a deserializer may produce.
// Floats are rejected even when integral.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return uintToInt64(n)
	case json.Number:
		if strings.ContainsAny(string(n), ".eE") {
			return 0, fmt.Errorf("expected integer, got float %s", n)
		}
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("integer out of range: %s", n)
		}
		return i, nil
	case float32, float64:
		return 0, fmt.Errorf("expected integer, got float %v", n)
	default:
		return 0, fmt.Errorf("expected integer, got %s", typeName(v))
	}
}

func uintToInt64(n uint64) (int64, error) {
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("integer out of range: %d", n)
	}
	return int64(n), nil
}

// typeName describes a decoded value in deserializer terms.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case json.Number:
		return "number"
	case float32, float64:
		return "float"
	case []any, []string, []map[string]any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = "`" + string(k) + "`"
	}
	return strings.Join(names, ", ")
}

// sortedKeys gives decode a deterministic order so the first error
// reported for a given input is always the same one.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
