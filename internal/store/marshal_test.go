package store

import (
	"database/sql"
	"reflect"
	"testing"
)

func TestMarshalValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  sql.NullString
	}{
		{"nil", nil, sql.NullString{}},
		{"string", "tls", sql.NullString{String: `"tls"`, Valid: true}},
		{"empty string", "", sql.NullString{String: `""`, Valid: true}},
		{"int64", int64(70000), sql.NullString{String: "70000", Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalValue(tt.value)
			if err != nil {
				t.Fatalf("marshalValue() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalValue() = %+v, want %+v", got, tt.want)
			}

			back, err := unmarshalValue(got)
			if err != nil {
				t.Fatalf("unmarshalValue() failed: %v", err)
			}
			if back != tt.value {
				t.Errorf("unmarshalValue() = %#v, want %#v", back, tt.value)
			}
		})
	}
}

func TestMarshalValue_RejectsFloat(t *testing.T) {
	if _, err := marshalValue(1.5); err == nil {
		t.Error("marshalValue(1.5) succeeded")
	}
}

func TestMarshalPositions(t *testing.T) {
	got, err := marshalPositions([]int{0, 3, 7})
	if err != nil {
		t.Fatalf("marshalPositions() failed: %v", err)
	}
	if got.String != "[0,3,7]" {
		t.Errorf("marshalPositions() = %q", got.String)
	}

	back, err := unmarshalPositions(got)
	if err != nil {
		t.Fatalf("unmarshalPositions() failed: %v", err)
	}
	if !reflect.DeepEqual(back, []int{0, 3, 7}) {
		t.Errorf("unmarshalPositions() = %v", back)
	}

	empty, err := marshalPositions(nil)
	if err != nil || empty.Valid {
		t.Errorf("marshalPositions(nil) = %+v, %v", empty, err)
	}
}
