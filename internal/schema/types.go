package schema

import (
	"net/url"
	"strings"
)

// Config is a Keep configuration document.
// Treat a Config as immutable once it has been validated.
type Config struct {
	Env     map[string]string
	Args    []string
	Files   []File
	Steward *url.URL // nil when unset
}

// Default returns the document used when no configuration is supplied:
// the three standard streams under their derived names.
func Default() *Config {
	return &Config{
		Env:   map[string]string{},
		Args:  []string{},
		Files: []File{Stdin{}, Stdout{}, Stderr{}},
	}
}

// Names returns the effective name of every binding in order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Files))
	for i, f := range c.Files {
		names[i] = f.Name()
	}
	return names
}

// FDNames returns the FD_NAMES value exported to the application.
func (c *Config) FDNames() string {
	return strings.Join(c.Names(), NameSeparator)
}

// File is a single named descriptor binding.
// Only the variants in this package implement it.
type File interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Name returns the effective name: the explicit name when given,
	// otherwise the name derived from the kind.
	Name() string
	// Label returns the explicit name and whether one was given.
	Label() (string, bool)
	// Params returns every parameter present on the entry, declared or stray.
	Params() Params
	// Stray returns the parameters present that the kind does not declare.
	Stray() Params

	file() // sealed
}

// Params holds optional binding parameters. A nil field is absent.
type Params struct {
	Addr *string
	Host *string
	Port *int64
	Prot *Protocol
}

// Has reports whether parameter f is present.
func (p Params) Has(f Field) bool {
	switch f {
	case FieldAddr:
		return p.Addr != nil
	case FieldHost:
		return p.Host != nil
	case FieldPort:
		return p.Port != nil
	case FieldProt:
		return p.Prot != nil
	}
	return false
}

// Value returns the value of parameter f, or nil when absent.
func (p Params) Value(f Field) any {
	switch f {
	case FieldAddr:
		if p.Addr != nil {
			return *p.Addr
		}
	case FieldHost:
		if p.Host != nil {
			return *p.Host
		}
	case FieldPort:
		if p.Port != nil {
			return *p.Port
		}
	case FieldProt:
		if p.Prot != nil {
			return string(*p.Prot)
		}
	}
	return nil
}

// Present returns the present parameters in canonical order.
func (p Params) Present() []Field {
	var out []Field
	for _, f := range ParamFields {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// IsZero reports whether no parameter is present.
func (p Params) IsZero() bool {
	return len(p.Present()) == 0
}

// merge overlays q's present fields onto p.
func (p Params) merge(q Params) Params {
	if q.Addr != nil {
		p.Addr = q.Addr
	}
	if q.Host != nil {
		p.Host = q.Host
	}
	if q.Port != nil {
		p.Port = q.Port
	}
	if q.Prot != nil {
		p.Prot = q.Prot
	}
	return p
}

// Entry carries what every binding has regardless of kind.
type Entry struct {
	// Title is the explicit name; nil when the entry omits it.
	Title *string
	// Extra holds parameters the kind does not declare.
	Extra Params
}

// Label implements File.
func (e Entry) Label() (string, bool) {
	if e.Title == nil {
		return "", false
	}
	return *e.Title, true
}

// Stray implements File.
func (e Entry) Stray() Params {
	return e.Extra
}

func (e Entry) nameOr(derived string) string {
	if e.Title != nil {
		return *e.Title
	}
	return derived
}

// Null binds the descriptor to a sink that discards all I/O.
type Null struct{ Entry }

// Stdin binds the descriptor to the inherited standard input.
type Stdin struct{ Entry }

// Stdout binds the descriptor to the inherited standard output.
type Stdout struct{ Entry }

// Stderr binds the descriptor to the inherited standard error.
type Stderr struct{ Entry }

func (Null) Kind() Kind   { return KindNull }
func (Stdin) Kind() Kind  { return KindStdin }
func (Stdout) Kind() Kind { return KindStdout }
func (Stderr) Kind() Kind { return KindStderr }

func (f Null) Name() string   { return f.nameOr(string(KindNull)) }
func (f Stdin) Name() string  { return f.nameOr(string(KindStdin)) }
func (f Stdout) Name() string { return f.nameOr(string(KindStdout)) }
func (f Stderr) Name() string { return f.nameOr(string(KindStderr)) }

func (f Null) Params() Params   { return f.Extra }
func (f Stdin) Params() Params  { return f.Extra }
func (f Stdout) Params() Params { return f.Extra }
func (f Stderr) Params() Params { return f.Extra }

func (Null) file()   {}
func (Stdin) file()  {}
func (Stdout) file() {}
func (Stderr) file() {}

// Listen accepts inbound connections on Port using Prot.
type Listen struct {
	Entry
	Addr *string
	Port *int64
	Prot *Protocol
}

// Kind implements File.
func (Listen) Kind() Kind { return KindListen }

// Name implements File. A listen binding has no derived name.
func (f Listen) Name() string { return f.nameOr("") }

// Params implements File.
func (f Listen) Params() Params {
	return Params{Addr: f.Addr, Port: f.Port, Prot: f.Prot}.merge(f.Extra)
}

// Address returns the listen address, DefaultListenAddr when omitted.
func (f Listen) Address() string {
	if f.Addr == nil {
		return DefaultListenAddr
	}
	return *f.Addr
}

func (Listen) file() {}

// Connect establishes an outbound connection to Host:Port using Prot.
type Connect struct {
	Entry
	Host *string
	Port *int64
	Prot *Protocol
}

// Kind implements File.
func (Connect) Kind() Kind { return KindConnect }

// Name implements File. Without an explicit name the host is used.
func (f Connect) Name() string {
	if f.Host == nil {
		return f.nameOr("")
	}
	return f.nameOr(*f.Host)
}

// Params implements File.
func (f Connect) Params() Params {
	return Params{Host: f.Host, Port: f.Port, Prot: f.Prot}.merge(f.Extra)
}

func (Connect) file() {}
