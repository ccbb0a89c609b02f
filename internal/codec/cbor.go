// Package codec encodes configuration documents as deterministic CBOR.
//
// Encoding follows RFC 8949 §4.2 Core Deterministic Encoding: sorted map
// keys, shortest integer forms, definite lengths. The same resolved
// document always produces the same bytes.
package codec

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/keepconf/internal/schema"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Documents only have string keys; any-typed targets get map[string]any
		// so decoded values feed straight back into schema.Decode.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder returns a deterministic CBOR encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// EncodeConfig encodes the resolved form of cfg.
func EncodeConfig(cfg *schema.Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("codec: nil config")
	}
	return Marshal(schema.Resolve(cfg))
}

// DecodeConfig decodes bytes produced by EncodeConfig back into a document.
// The result is not validated.
func DecodeConfig(data []byte) (*schema.Config, error) {
	var raw map[string]any
	if err := Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return schema.Decode(raw)
}

// Diagnose returns the RFC 8949 diagnostic notation for data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
