package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/keepconf/internal/schema"
	"github.com/roach88/keepconf/internal/validate"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a rejected run carrying one of each value shape.
func createTestRun(source string) *Run {
	return &Run{
		Source:       source,
		Format:       "toml",
		SourceDigest: "source-digest",
		ConfigDigest: "config-digest",
		Accepted:     false,
		Violations: validate.Violations{
			{
				Kind:    validate.PortOutOfRange,
				Code:    validate.ErrPortOutOfRange,
				Entry:   "LISTEN",
				Index:   0,
				Field:   schema.FieldPort,
				Value:   int64(70000),
				Message: "port 70000 out of range [1, 65535]",
			},
			{
				Kind:      validate.DuplicateName,
				Code:      validate.ErrDuplicateName,
				Entry:     "LISTEN",
				Index:     1,
				Field:     schema.FieldName,
				Value:     "LISTEN",
				Positions: []int{0, 1},
				Message:   `duplicate name "LISTEN" at positions [0, 1]`,
			},
			{
				Kind:    validate.MissingField,
				Code:    validate.ErrMissingField,
				Entry:   "LISTEN",
				Index:   1,
				Field:   schema.FieldHost,
				Message: "connect binding requires host",
			},
		},
	}
}
