package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/keepconf/internal/schema"
	"github.com/roach88/keepconf/internal/validate"
)

const runColumns = `id, seq, source, format, source_digest, config_digest, accepted, violation_count, error`

// ReadRun returns the run with the given id and its violations in the
// order they were reported. Returns ErrRunNotFound for an unknown id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %q: %w", id, err)
	}

	run.Violations, err = s.readViolations(ctx, id)
	if err != nil {
		return Run{}, fmt.Errorf("read run %q: %w", id, err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first.
// A limit of zero or less returns every run. Violations are not loaded.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: iterate: %w", err)
	}
	return runs, nil
}

func (s *Store) readViolations(ctx context.Context, runID string) (validate.Violations, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, code, entry, idx, field, value, positions, message
		FROM violations
		WHERE run_id = ?
		ORDER BY ordinal ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	var vs validate.Violations
	for rows.Next() {
		var (
			v                validate.Violation
			kind, field      string
			value, positions sql.NullString
		)
		if err := rows.Scan(&kind, &v.Code, &v.Entry, &v.Index, &field, &value, &positions, &v.Message); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Kind = validate.Kind(kind)
		v.Field = schema.Field(field)
		if v.Value, err = unmarshalValue(value); err != nil {
			return nil, err
		}
		if v.Positions, err = unmarshalPositions(positions); err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return vs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Source,
		&run.Format,
		&run.SourceDigest,
		&run.ConfigDigest,
		&run.Accepted,
		&run.ViolationCount,
		&run.Error,
	)
	return run, err
}
