package schema

// Encode returns the generic mapping form of cfg, the inverse of Decode.
// Only fields present on the document appear; stray parameters are kept.
// Values are limited to string, int64, []any and map[string]any.
func Encode(cfg *Config) map[string]any {
	return encode(cfg, false)
}

// Resolve is like Encode but fills in what the host would use at startup:
// every entry carries its effective name and listen entries their address.
func Resolve(cfg *Config) map[string]any {
	return encode(cfg, true)
}

func encode(cfg *Config, resolved bool) map[string]any {
	env := make(map[string]any, len(cfg.Env))
	for k, v := range cfg.Env {
		env[k] = v
	}
	args := make([]any, len(cfg.Args))
	for i, a := range cfg.Args {
		args[i] = a
	}
	files := make([]any, len(cfg.Files))
	for i, f := range cfg.Files {
		files[i] = encodeFile(f, resolved)
	}

	out := map[string]any{
		keyEnv:   env,
		keyArgs:  args,
		keyFiles: files,
	}
	if cfg.Steward != nil {
		out[keySteward] = cfg.Steward.String()
	}
	return out
}

func encodeFile(f File, resolved bool) map[string]any {
	m := map[string]any{string(FieldKind): string(f.Kind())}
	if resolved {
		m[string(FieldName)] = f.Name()
	} else if name, ok := f.Label(); ok {
		m[string(FieldName)] = name
	}

	params := f.Params()
	for _, field := range params.Present() {
		m[string(field)] = params.Value(field)
	}
	if l, ok := f.(Listen); ok && resolved {
		m[string(FieldAddr)] = l.Address()
	}
	return m
}
