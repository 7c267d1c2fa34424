package dates

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseLayouts(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{"iso", "2024-01-15"},
		{"day first slash", "15/01/2024"},
		{"day first dash", "15-01-2024"},
		{"compact", "20240115"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want %v", tt.input, want)
			}
			if !got.Equal(want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestParseSlashPrefersDayFirst(t *testing.T) {
	got := Parse("03/04/2024")
	if got == nil {
		t.Fatal("Parse returned nil")
	}
	want := time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Parse(03/04/2024) = %v, want %v", got, want)
	}
}

func TestParseNative(t *testing.T) {
	instant := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	if got := Parse(instant); got == nil || !got.Equal(instant) {
		t.Errorf("Parse(time.Time) = %v, want %v", got, instant)
	}
	if got := Parse(&instant); got == nil || !got.Equal(instant) {
		t.Errorf("Parse(*time.Time) = %v, want %v", got, instant)
	}
	if got := Parse(primitive.NewDateTimeFromTime(instant)); got == nil || !got.Equal(instant) {
		t.Errorf("Parse(primitive.DateTime) = %v, want %v", got, instant)
	}
}

func TestParseUnknown(t *testing.T) {
	inputs := []any{nil, "", "not a date", "2024-13-45", 42, (*time.Time)(nil), time.Time{}}
	for _, input := range inputs {
		if got := Parse(input); got != nil {
			t.Errorf("Parse(%v) = %v, want nil", input, got)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"slash date", "15/01/2024", "2024-01-15"},
		{"already canonical", "2024-01-15", "2024-01-15"},
		{"native", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), "2024-01-15"},
		{"unparsable", "gibberish", ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.input); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	// A formatted value must parse back to the same calendar day.
	for _, input := range []string{"15/01/2024", "2024-01-15", "15-01-2024"} {
		formatted := Format(input)
		if formatted == "" {
			t.Fatalf("Format(%q) = empty", input)
		}
		if again := Format(formatted); again != formatted {
			t.Errorf("Format(Format(%q)) = %q, want %q", input, again, formatted)
		}
	}
}
