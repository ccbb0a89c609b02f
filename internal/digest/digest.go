package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/keepconf/internal/schema"
)

// Domain prefixes. The version suffix leaves room to change the encoding.
const (
	DomainConfig = "keepconf/config/v1"
	DomainSource = "keepconf/source/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data) as lowercase hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Config returns the identity of the resolved document. Documents that
// differ only in syntax, key order or spelled-out defaults share it.
//
// Strings are NFC-normalized before hashing, so a name or host spelled in
// another normalization form yields the same digest even though the bytes
// the workload sees, such as FD_NAMES, differ. Compare FD_NAMES or the
// exported document when byte identity matters.
func Config(cfg *schema.Config) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("digest: nil config")
	}
	canonical, err := MarshalCanonical(schema.Resolve(cfg))
	if err != nil {
		return "", fmt.Errorf("digest: config: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// MustConfig is like Config but panics on error.
// Use only on documents produced by schema.Decode or built in tests.
func MustConfig(cfg *schema.Config) string {
	d, err := Config(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

// Source returns the identity of raw configuration bytes.
func Source(data []byte) string {
	return hashWithDomain(DomainSource, data)
}
