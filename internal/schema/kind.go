package schema

// Kind is the variant tag of a file binding.
type Kind string

// Binding kinds.
const (
	KindNull    Kind = "null"
	KindStdin   Kind = "stdin"
	KindStdout  Kind = "stdout"
	KindStderr  Kind = "stderr"
	KindListen  Kind = "listen"
	KindConnect Kind = "connect"
)

// Kinds lists every binding kind in declaration order.
var Kinds = []Kind{KindNull, KindStdin, KindStdout, KindStderr, KindListen, KindConnect}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Field names a key of a file binding entry.
type Field string

// Entry keys.
const (
	FieldName Field = "name"
	FieldKind Field = "kind"
	FieldAddr Field = "addr"
	FieldHost Field = "host"
	FieldPort Field = "port"
	FieldProt Field = "prot"
)

// ParamFields lists the kind-specific parameters in canonical order.
// Violations and encoded output follow this order.
var ParamFields = []Field{FieldAddr, FieldHost, FieldPort, FieldProt}

// isEntryKey reports whether f is a key any entry may carry.
func isEntryKey(f Field) bool {
	switch f {
	case FieldName, FieldKind, FieldAddr, FieldHost, FieldPort, FieldProt:
		return true
	}
	return false
}

// Rule is the field table for one kind.
type Rule struct {
	// NameRequired is set when the entry has no derived name to fall back on.
	NameRequired bool
	Required     []Field
	Optional     []Field
}

// Allows reports whether f is a parameter the kind declares.
func (r Rule) Allows(f Field) bool {
	return contains(r.Required, f) || contains(r.Optional, f)
}

// Forbidden returns the parameters the kind does not declare, in canonical order.
func (r Rule) Forbidden() []Field {
	var out []Field
	for _, f := range ParamFields {
		if !r.Allows(f) {
			out = append(out, f)
		}
	}
	return out
}

var rules = map[Kind]Rule{
	KindNull:   {},
	KindStdin:  {},
	KindStdout: {},
	KindStderr: {},
	KindListen: {
		NameRequired: true,
		Required:     []Field{FieldPort, FieldProt},
		Optional:     []Field{FieldAddr},
	},
	KindConnect: {
		Required: []Field{FieldHost, FieldPort, FieldProt},
	},
}

// RuleFor returns the field table for k. Unknown kinds get the empty rule.
func RuleFor(k Kind) Rule {
	return rules[k]
}

func contains(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

// Protocol identifies the transport used by listen and connect bindings.
// The type is open: decoding keeps any string so that unrecognized values
// reach the validator instead of failing the decode.
type Protocol string

// Protocols recognized by default.
const (
	ProtocolTCP Protocol = "tcp"
	ProtocolTLS Protocol = "tls"
)

// DefaultProtocols is the protocol set a validator recognizes unless configured otherwise.
var DefaultProtocols = []Protocol{ProtocolTCP, ProtocolTLS}

// Port bounds.
const (
	MinPort = 1
	MaxPort = 65535
)

// DefaultListenAddr is the listen address used when addr is omitted.
const DefaultListenAddr = "::"

// NameSeparator joins effective names in FD_NAMES. Names must not contain it.
const NameSeparator = ":"
