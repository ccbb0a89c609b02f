// Package schema provides the typed model of a Keep configuration document.
//
// A document is an ordered list of named file-descriptor bindings plus the
// environment, arguments and optional steward URL handed to the application.
// Each binding is one variant of the sealed File interface; a variant holds
// only the parameters its kind declares.
//
// This package performs no semantic validation. Decode accepts anything
// that is structurally well formed (right keys, right primitive types, known
// kind tag) and leaves judgment to package validate. Parameters that are
// present but not declared by an entry's kind are kept as stray parameters
// so they can be reported rather than silently dropped.
//
// schema imports nothing internal.
package schema
