package normalizer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{"json int", json.Number("12345"), 12345, false},
		{"json integral float", json.Number("7.0"), 7, false},
		{"numeric string", " 4981237 ", 4981237, false},
		{"float64", float64(3), 3, false},
		{"int64", int64(9), 9, false},
		{"fractional", json.Number("1.5"), 0, true},
		{"text", "abc", 0, true},
		{"null", nil, 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrTypeCoercion) {
					t.Errorf("err = %v, want ErrTypeCoercion", err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("ParseID(%#v) = (%d, %v), want %d", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	if f, err := ParseNumber(json.Number("52000.75")); err != nil || f != 52000.75 {
		t.Errorf("ParseNumber(json) = (%v, %v)", f, err)
	}

	if f, err := ParseNumber("61000"); err != nil || f != 61000 {
		t.Errorf("ParseNumber(string) = (%v, %v)", f, err)
	}

	if _, err := ParseNumber("competitive"); !errors.Is(err, ErrTypeCoercion) {
		t.Errorf("err = %v, want ErrTypeCoercion", err)
	}

	if _, err := ParseNumber([]any{}); !errors.Is(err, ErrTypeCoercion) {
		t.Errorf("err = %v, want ErrTypeCoercion", err)
	}
}

func TestParseNumber_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nan string", "NaN"},
		{"inf string", "Inf"},
		{"signed inf string", "+Inf"},
		{"negative infinity string", " -infinity "},
		{"nan json number", json.Number("NaN")},
		{"inf json number", json.Number("Inf")},
		{"nan float", math.NaN()},
		{"inf float", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if f, err := ParseNumber(tt.in); !errors.Is(err, ErrTypeCoercion) {
				t.Errorf("ParseNumber(%#v) = (%v, %v), want ErrTypeCoercion", tt.in, f, err)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"rfc3339 utc", "2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"offset converted", "2024-03-01T12:00:00+02:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"date only", "2023-11-20", time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)},
		{"fractional seconds", "2024-05-01T08:30:00.123456Z", time.Date(2024, 5, 1, 8, 30, 0, 123456000, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if err != nil {
				t.Fatalf("ParseTime(%v) failed: %v", tt.in, err)
			}

			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseTime(%v) = %v, want %v UTC", tt.in, got, tt.want)
			}
		})
	}

	for _, bad := range []any{"", "   ", "yesterday-ish", nil, true} {
		if _, err := ParseTime(bad); !errors.Is(err, ErrTypeCoercion) {
			t.Errorf("ParseTime(%#v) err = %v, want ErrTypeCoercion", bad, err)
		}
	}
}
