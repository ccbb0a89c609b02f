package validate

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/keepconf/internal/schema"
)

// ErrNilConfig is returned by Validate when given no document.
var ErrNilConfig = errors.New("validate: nil config")

// Validator checks a decoded document against the binding invariants.
// A Validator is immutable after New and safe for concurrent use.
type Validator struct {
	protocols   map[schema.Protocol]bool
	namePattern *regexp.Regexp
}

// Option configures a Validator.
type Option func(*Validator)

// WithProtocols replaces the recognized protocol set.
func WithProtocols(protocols ...schema.Protocol) Option {
	return func(v *Validator) {
		v.protocols = make(map[schema.Protocol]bool, len(protocols))
		for _, p := range protocols {
			v.protocols[p] = true
		}
	}
}

// WithNamePattern requires every effective name to match re.
// The colon rule applies regardless.
func WithNamePattern(re *regexp.Regexp) Option {
	return func(v *Validator) {
		v.namePattern = re
	}
}

// New returns a Validator recognizing schema.DefaultProtocols unless
// configured otherwise.
func New(opts ...Option) *Validator {
	v := &Validator{}
	WithProtocols(schema.DefaultProtocols...)(v)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns cfg unchanged when it satisfies every invariant,
// otherwise a Violations error listing everything found.
func Validate(cfg *schema.Config) (*schema.Config, error) {
	return New().Validate(cfg)
}

// Validate returns cfg unchanged when it satisfies every invariant,
// otherwise a Violations error listing everything found.
func (v *Validator) Validate(cfg *schema.Config) (*schema.Config, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if vs := v.Check(cfg); len(vs) > 0 {
		return nil, vs
	}
	return cfg, nil
}

// Check returns all violations in cfg (does not fail-fast).
// The result is nil for an accepted document and deterministic for a given input.
func (v *Validator) Check(cfg *schema.Config) Violations {
	if cfg == nil {
		return nil
	}

	var vs Violations
	positions := namePositions(cfg.Files)
	reported := make(map[string]bool)

	for i, f := range cfg.Files {
		name := f.Name()

		vs = append(vs, v.checkName(i, f)...)

		// DuplicateName is reported once per name, at its first repeat.
		if name != "" && len(positions[name]) > 1 && !reported[name] && positions[name][1] == i {
			reported[name] = true
			vs = append(vs, Violation{
				Kind:      DuplicateName,
				Entry:     name,
				Index:     i,
				Field:     schema.FieldName,
				Value:     name,
				Positions: positions[name],
				Message:   fmt.Sprintf("duplicate name %q at positions %s", name, formatPositions(positions[name])),
			})
		}

		vs = append(vs, checkFields(i, f)...)
		vs = append(vs, v.checkValues(i, f)...)
	}

	for i := range vs {
		vs[i].Code = vs[i].Kind.Code()
	}
	return vs
}

// namePositions maps each non-empty effective name to the indexes using it.
func namePositions(files []schema.File) map[string][]int {
	positions := make(map[string][]int)
	for i, f := range files {
		if name := f.Name(); name != "" {
			positions[name] = append(positions[name], i)
		}
	}
	return positions
}

func (v *Validator) checkName(i int, f schema.File) Violations {
	label, explicit := f.Label()
	if !explicit {
		if schema.RuleFor(f.Kind()).NameRequired {
			return Violations{{
				Kind:    MissingField,
				Entry:   f.Name(),
				Index:   i,
				Field:   schema.FieldName,
				Message: fmt.Sprintf("%s binding requires a name", f.Kind()),
			}}
		}
		// Derived names come from the kind or the host; only a host can be malformed.
		label = f.Name()
		if label == "" {
			return nil
		}
	}

	if label == "" {
		return Violations{{
			Kind:    EmptyName,
			Index:   i,
			Field:   schema.FieldName,
			Value:   label,
			Message: "name must be non-empty",
		}}
	}

	var vs Violations
	if strings.Contains(label, schema.NameSeparator) {
		msg := fmt.Sprintf("invalid value for `name` contains %q", schema.NameSeparator)
		if !explicit {
			msg = fmt.Sprintf("derived name %q contains %q, set `name` explicitly", label, schema.NameSeparator)
		}
		vs = append(vs, Violation{
			Kind:    InvalidName,
			Entry:   label,
			Index:   i,
			Field:   schema.FieldName,
			Value:   label,
			Message: msg,
		})
	} else if v.namePattern != nil && !v.namePattern.MatchString(label) {
		vs = append(vs, Violation{
			Kind:    InvalidName,
			Entry:   label,
			Index:   i,
			Field:   schema.FieldName,
			Value:   label,
			Message: fmt.Sprintf("name %q does not match %s", label, v.namePattern),
		})
	}
	return vs
}

// checkFields applies the required/forbidden table for the entry's kind.
func checkFields(i int, f schema.File) Violations {
	var vs Violations
	rule := schema.RuleFor(f.Kind())
	params := f.Params()

	for _, field := range schema.ParamFields {
		switch {
		case contains(rule.Required, field) && !params.Has(field):
			vs = append(vs, Violation{
				Kind:    MissingField,
				Entry:   f.Name(),
				Index:   i,
				Field:   field,
				Message: fmt.Sprintf("%s binding requires %s", f.Kind(), field),
			})
		case !rule.Allows(field) && params.Has(field):
			vs = append(vs, Violation{
				Kind:    ForbiddenFieldPresent,
				Entry:   f.Name(),
				Index:   i,
				Field:   field,
				Value:   params.Value(field),
				Message: fmt.Sprintf("%s is not accepted by %s bindings", field, f.Kind()),
			})
		}
	}
	return vs
}

// checkValues checks every present parameter, declared or not.
func (v *Validator) checkValues(i int, f schema.File) Violations {
	var vs Violations
	p := f.Params()

	if p.Port != nil && (*p.Port < schema.MinPort || *p.Port > schema.MaxPort) {
		vs = append(vs, Violation{
			Kind:    PortOutOfRange,
			Entry:   f.Name(),
			Index:   i,
			Field:   schema.FieldPort,
			Value:   *p.Port,
			Message: fmt.Sprintf("port %d out of range [%d, %d]", *p.Port, schema.MinPort, schema.MaxPort),
		})
	}

	if p.Prot != nil && !v.protocols[*p.Prot] {
		vs = append(vs, Violation{
			Kind:    UnknownProtocol,
			Entry:   f.Name(),
			Index:   i,
			Field:   schema.FieldProt,
			Value:   string(*p.Prot),
			Message: fmt.Sprintf("unknown protocol %q, expected one of %s", *p.Prot, v.protocolList()),
		})
	}

	if p.Host != nil && *p.Host == "" {
		vs = append(vs, Violation{
			Kind:    EmptyHost,
			Entry:   f.Name(),
			Index:   i,
			Field:   schema.FieldHost,
			Value:   "",
			Message: "host must be non-empty",
		})
	}

	if p.Addr != nil {
		if _, err := netip.ParseAddr(*p.Addr); err != nil {
			vs = append(vs, Violation{
				Kind:    InvalidAddress,
				Entry:   f.Name(),
				Index:   i,
				Field:   schema.FieldAddr,
				Value:   *p.Addr,
				Message: fmt.Sprintf("addr %q is not an IP address", *p.Addr),
			})
		}
	}

	return vs
}

// protocolList renders the recognized set in a stable order.
func (v *Validator) protocolList() string {
	var names []string
	for p := range v.protocols {
		names = append(names, fmt.Sprintf("%q", p))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func formatPositions(ps []int) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func contains(fields []schema.Field, f schema.Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
