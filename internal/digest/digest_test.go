package digest

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/keepconf/internal/schema"
)

func ptr[T any](v T) *T { return &v }

func listenConfig(addr *string) *schema.Config {
	return &schema.Config{
		Files: []schema.File{
			schema.Stdin{},
			schema.Listen{
				Entry: schema.Entry{Title: ptr("LISTEN")},
				Addr:  addr,
				Port:  ptr(int64(12345)),
				Prot:  ptr(schema.ProtocolTLS),
			},
		},
	}
}

func TestConfigDeterminism(t *testing.T) {
	a, err := Config(listenConfig(nil))
	require.NoError(t, err)
	b, err := Config(listenConfig(nil))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestConfigIgnoresSpelledOutDefaults(t *testing.T) {
	implicit := MustConfig(listenConfig(nil))
	explicit := MustConfig(listenConfig(ptr(schema.DefaultListenAddr)))
	assert.Equal(t, implicit, explicit)

	derived := MustConfig(&schema.Config{Files: []schema.File{schema.Stdout{}}})
	named := MustConfig(&schema.Config{Files: []schema.File{schema.Stdout{Entry: schema.Entry{Title: ptr("stdout")}}}})
	assert.Equal(t, derived, named)
}

func TestConfigChangesWithContent(t *testing.T) {
	base := MustConfig(listenConfig(nil))

	other := listenConfig(nil)
	other.Files[1] = schema.Listen{
		Entry: schema.Entry{Title: ptr("LISTEN")},
		Port:  ptr(int64(12346)),
		Prot:  ptr(schema.ProtocolTLS),
	}
	assert.NotEqual(t, base, MustConfig(other))

	reordered := &schema.Config{Files: []schema.File{listenConfig(nil).Files[1], schema.Stdin{}}}
	assert.NotEqual(t, base, MustConfig(reordered))

	withEnv := listenConfig(nil)
	withEnv.Env = map[string]string{"A": "1"}
	assert.NotEqual(t, base, MustConfig(withEnv))

	withSteward := listenConfig(nil)
	withSteward.Steward, _ = url.Parse("https://steward.example.com")
	assert.NotEqual(t, base, MustConfig(withSteward))
}

func TestConfigNil(t *testing.T) {
	_, err := Config(nil)
	assert.Error(t, err)
	assert.Panics(t, func() { MustConfig(nil) })
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainConfig, data), hashWithDomain(DomainSource, data))
	assert.Equal(t, hashWithDomain(DomainSource, data), Source(data))
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// Without the separator these two would hash identical byte streams.
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestSourceKnownValue(t *testing.T) {
	assert.Len(t, Source(nil), 64)
	assert.Equal(t, Source(nil), Source([]byte{}))
	assert.NotEqual(t, Source([]byte("a")), Source([]byte("b")))
}

func TestConfigNormalizesStringValues(t *testing.T) {
	connect := func(host string) *schema.Config {
		return &schema.Config{Files: []schema.File{
			schema.Connect{Host: ptr(host), Port: ptr(int64(443)), Prot: ptr(schema.ProtocolTLS)},
		}}
	}
	composed := connect("caf\u00E9.example")
	decomposed := connect("cafe\u0301.example")

	assert.Equal(t, MustConfig(composed), MustConfig(decomposed))
	assert.NotEqual(t, composed.FDNames(), decomposed.FDNames())
}
