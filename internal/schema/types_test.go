package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveNames(t *testing.T) {
	cfg, err := Decode(map[string]any{
		"files": []any{
			map[string]any{"kind": "stdin"},
			map[string]any{"name": "X", "kind": "listen", "prot": "tcp", "port": int64(9000)},
			map[string]any{"kind": "stdout"},
			map[string]any{"kind": "null"},
			map[string]any{"kind": "stderr"},
			map[string]any{"kind": "connect", "host": "example.com"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"stdin", "X", "stdout", "null", "stderr", "example.com"}, cfg.Names())
	assert.Equal(t, "stdin:X:stdout:null:stderr:example.com", cfg.FDNames())
}

func TestExplicitNameWins(t *testing.T) {
	f := Connect{Entry: Entry{Title: ptr("UPSTREAM")}, Host: ptr("example.com")}
	assert.Equal(t, "UPSTREAM", f.Name())

	label, ok := f.Label()
	assert.True(t, ok)
	assert.Equal(t, "UPSTREAM", label)

	_, ok = Stdin{}.Label()
	assert.False(t, ok)
}

func TestUnnamedListenHasNoName(t *testing.T) {
	assert.Equal(t, "", Listen{}.Name())
	assert.Equal(t, "", Connect{}.Name())
}

func TestListenAddress(t *testing.T) {
	assert.Equal(t, DefaultListenAddr, Listen{}.Address())
	assert.Equal(t, "127.0.0.1", Listen{Addr: ptr("127.0.0.1")}.Address())
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "stdin:stdout:stderr", cfg.FDNames())
	assert.Empty(t, cfg.Env)
	assert.Empty(t, cfg.Args)
	assert.Nil(t, cfg.Steward)
}

func TestRuleTable(t *testing.T) {
	listen := RuleFor(KindListen)
	assert.True(t, listen.NameRequired)
	assert.Equal(t, []Field{FieldPort, FieldProt}, listen.Required)
	assert.Equal(t, []Field{FieldHost}, listen.Forbidden())

	connect := RuleFor(KindConnect)
	assert.False(t, connect.NameRequired)
	assert.Equal(t, []Field{FieldHost, FieldPort, FieldProt}, connect.Required)
	assert.Equal(t, []Field{FieldAddr}, connect.Forbidden())

	for _, k := range []Kind{KindNull, KindStdin, KindStdout, KindStderr} {
		r := RuleFor(k)
		assert.Empty(t, r.Required, k)
		assert.Equal(t, ParamFields, r.Forbidden(), k)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	_, ok := ParseKind("LISTEN")
	assert.False(t, ok, "kind tags are case sensitive")
}

func TestParamsValue(t *testing.T) {
	p := Params{Host: ptr(""), Port: ptr(int64(0)), Prot: ptr(Protocol("udp"))}
	assert.Equal(t, []Field{FieldHost, FieldPort, FieldProt}, p.Present())
	assert.Equal(t, "", p.Value(FieldHost))
	assert.Equal(t, int64(0), p.Value(FieldPort))
	assert.Equal(t, "udp", p.Value(FieldProt))
	assert.Nil(t, p.Value(FieldAddr))
	assert.False(t, p.IsZero())
	assert.True(t, Params{}.IsZero())
}
