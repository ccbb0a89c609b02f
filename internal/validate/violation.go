package validate

import (
	"fmt"
	"strings"

	"github.com/roach88/keepconf/internal/schema"
)

// Kind classifies a violation.
type Kind string

// Violation kinds.
const (
	DuplicateName         Kind = "DuplicateName"
	MissingField          Kind = "MissingField"
	ForbiddenFieldPresent Kind = "ForbiddenFieldPresent"
	PortOutOfRange        Kind = "PortOutOfRange"
	UnknownProtocol       Kind = "UnknownProtocol"
	EmptyHost             Kind = "EmptyHost"
	EmptyName             Kind = "EmptyName"
	InvalidName           Kind = "InvalidName"
	InvalidAddress        Kind = "InvalidAddress"
)

// Violation codes (E200-E299)
const (
	ErrDuplicateName         = "E201" // effective name used more than once
	ErrMissingField          = "E202" // required field absent
	ErrForbiddenFieldPresent = "E203" // field not accepted by the kind
	ErrPortOutOfRange        = "E204" // port outside [1, 65535]
	ErrUnknownProtocol       = "E205" // prot not in the recognized set
	ErrEmptyHost             = "E206" // host present but empty
	ErrEmptyName             = "E207" // name present but empty
	ErrInvalidName           = "E208" // name contains ':' or fails the name pattern
	ErrInvalidAddress        = "E209" // addr is not an IP literal
)

var codes = map[Kind]string{
	DuplicateName:         ErrDuplicateName,
	MissingField:          ErrMissingField,
	ForbiddenFieldPresent: ErrForbiddenFieldPresent,
	PortOutOfRange:        ErrPortOutOfRange,
	UnknownProtocol:       ErrUnknownProtocol,
	EmptyHost:             ErrEmptyHost,
	EmptyName:             ErrEmptyName,
	InvalidName:           ErrInvalidName,
	InvalidAddress:        ErrInvalidAddress,
}

// Code returns the stable error code for k.
func (k Kind) Code() string {
	return codes[k]
}

// Violation is one semantic inconsistency in a structurally valid document.
type Violation struct {
	Kind      Kind         `json:"kind"`
	Code      string       `json:"code"`
	Entry     string       `json:"entry"`
	Index     int          `json:"index"`
	Field     schema.Field `json:"field"`
	Value     any          `json:"value,omitempty"`
	Positions []int        `json:"positions,omitempty"`
	Message   string       `json:"message"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("[%s] files[%d] %q: %s: %s", v.Code, v.Index, v.Entry, v.Field, v.Message)
}

// Violations is the complete result of a failed validation.
type Violations []Violation

// Error implements the error interface, one violation per line.
func (vs Violations) Error() string {
	if len(vs) == 0 {
		return "no violations"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d violation(s)", len(vs))
	for _, v := range vs {
		b.WriteString("\n  ")
		b.WriteString(v.Error())
	}
	return b.String()
}

// Of returns the violations of kind k, preserving order.
func (vs Violations) Of(k Kind) Violations {
	var out Violations
	for _, v := range vs {
		if v.Kind == k {
			out = append(out, v)
		}
	}
	return out
}
