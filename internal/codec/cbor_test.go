package codec

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepconf/internal/schema"
)

func ptr[T any](v T) *T { return &v }

func sampleConfig() *schema.Config {
	steward, _ := url.Parse("https://steward.example.com/v1")
	return &schema.Config{
		Env:  map[string]string{"LOG_LEVEL": "info", "A": "1"},
		Args: []string{"--port-from-env"},
		Files: []schema.File{
			schema.Stdin{},
			schema.Stdout{},
			schema.Stderr{},
			schema.Listen{
				Entry: schema.Entry{Title: ptr("LISTEN")},
				Port:  ptr(int64(12345)),
				Prot:  ptr(schema.ProtocolTLS),
			},
			schema.Connect{
				Host: ptr("example.com"),
				Port: ptr(int64(443)),
				Prot: ptr(schema.ProtocolTCP),
			},
		},
		Steward: steward,
	}
}

func TestEncodeConfigDeterministic(t *testing.T) {
	first, err := EncodeConfig(sampleConfig())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := EncodeConfig(sampleConfig())
		require.NoError(t, err)
		require.True(t, bytes.Equal(first, again), "encoding %d differs", i)
	}
}

func TestEncodeConfigRoundTrip(t *testing.T) {
	cfg := sampleConfig()

	data, err := EncodeConfig(cfg)
	require.NoError(t, err)

	decoded, err := DecodeConfig(data)
	require.NoError(t, err)

	assert.Equal(t, schema.Resolve(cfg), schema.Resolve(decoded))
	assert.Equal(t, cfg.FDNames(), decoded.FDNames())
	assert.Equal(t, "https://steward.example.com/v1", decoded.Steward.String())

	l, ok := decoded.Files[3].(schema.Listen)
	require.True(t, ok)
	require.NotNil(t, l.Addr)
	assert.Equal(t, schema.DefaultListenAddr, *l.Addr)
}

func TestEncodeConfigNil(t *testing.T) {
	_, err := EncodeConfig(nil)
	assert.Error(t, err)
}

func TestDecodeConfigGarbage(t *testing.T) {
	_, err := DecodeConfig([]byte{0xff, 0x00})
	assert.Error(t, err)
}

func TestDecodeConfigRejectsDuplicateKeys(t *testing.T) {
	// {"args": [], "args": []}
	data := []byte{0xa2, 0x64, 'a', 'r', 'g', 's', 0x80, 0x64, 'a', 'r', 'g', 's', 0x80}
	_, err := DecodeConfig(data)
	assert.Error(t, err)
}

func TestMarshalSortsKeys(t *testing.T) {
	a, err := Marshal(map[string]any{"zebra": 1, "alpha": 2, "beta": 3})
	require.NoError(t, err)

	diag, err := Diagnose(a)
	require.NoError(t, err)
	assert.Equal(t, `{"beta": 3, "alpha": 2, "zebra": 1}`, diag)
}

func TestNewEncoderMatchesMarshal(t *testing.T) {
	v := map[string]any{"files": []any{map[string]any{"kind": "null"}}}

	want, err := Marshal(v)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(v))
	assert.Equal(t, want, buf.Bytes())
}
