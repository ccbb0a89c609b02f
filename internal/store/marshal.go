package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/keepconf/internal/digest"
)

// marshalValue converts a violation value to canonical JSON TEXT.
// A nil value is stored as NULL.
func marshalValue(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := digest.MarshalCanonical(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal value: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalValue parses canonical JSON TEXT back into string or int64.
func unmarshalValue(data sql.NullString) (any, error) {
	if !data.Valid {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data.String)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	if n, ok := v.(json.Number); ok {
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("unmarshal value: %w", err)
		}
		return i, nil
	}
	return v, nil
}

func marshalPositions(ps []int) (sql.NullString, error) {
	if len(ps) == 0 {
		return sql.NullString{}, nil
	}
	list := make([]any, len(ps))
	for i, p := range ps {
		list[i] = p
	}
	return marshalValue(list)
}

func unmarshalPositions(data sql.NullString) ([]int, error) {
	if !data.Valid {
		return nil, nil
	}
	var ps []int
	if err := json.Unmarshal([]byte(data.String), &ps); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	return ps, nil
}
