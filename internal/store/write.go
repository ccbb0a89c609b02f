package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// WriteRun records run and its violations in one transaction.
// It assigns run.ID when empty, and always assigns run.Seq and
// run.ViolationCount.
func (s *Store) WriteRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.ViolationCount = len(run.Violations)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source, format, source_digest, config_digest, accepted, violation_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		run.Source,
		run.Format,
		run.SourceDigest,
		run.ConfigDigest,
		run.Accepted,
		run.ViolationCount,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for i, v := range run.Violations {
		value, err := marshalValue(v.Value)
		if err != nil {
			return fmt.Errorf("write run: violation %d: %w", i, err)
		}
		positions, err := marshalPositions(v.Positions)
		if err != nil {
			return fmt.Errorf("write run: violation %d: %w", i, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO violations
			(run_id, ordinal, kind, code, entry, idx, field, value, positions, message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			i,
			string(v.Kind),
			v.Code,
			v.Entry,
			v.Index,
			string(v.Field),
			value,
			positions,
			v.Message,
		)
		if err != nil {
			return fmt.Errorf("write run: violation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}

	run.Seq = seq
	s.logger.Debug("recorded run", "id", run.ID, "seq", seq, "accepted", run.Accepted, "violations", run.ViolationCount)
	return nil
}
