package timeexpr

import (
	"errors"
	"testing"
	"time"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestResolveRelative(t *testing.T) {
	tests := []struct {
		expr string
		want time.Time
	}{
		{"now", now},
		{"30s", now.Add(-30 * time.Second)},
		{"5min", now.Add(-5 * time.Minute)},
		{"2h", now.Add(-2 * time.Hour)},
		{"1d", now.Add(-24 * time.Hour)},
		{"3w", now.Add(-3 * 7 * 24 * time.Hour)},
		{"0min", now},
		{"0s", now},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.expr, now, "start")
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", tt.expr, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("Resolve(%q)=%v want=%v", tt.expr, got, tt.want)
		}
	}
}

func TestResolveAbsolute(t *testing.T) {
	got, err := Resolve("2025-03-09 23:30:00", now, "start")
	if err != nil {
		t.Fatalf("absolute resolve: %v", err)
	}
	want := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
}

func TestResolveInvalid(t *testing.T) {
	tests := []string{
		"not-a-time",
		"5minutes", // unknown unit
		"5MIN",     // units are case-sensitive
		"min",      // no magnitude
		"-5min",    // negative magnitude
		"5 min",    // inner whitespace
		"2025-03-09",
		"",
	}
	for _, expr := range tests {
		_, err := Resolve(expr, now, "end")
		if err == nil {
			t.Fatalf("Resolve(%q) expected error", expr)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Resolve(%q) error type %T", expr, err)
		}
		if pe.Field != "end" {
			t.Fatalf("Resolve(%q) field=%q want end", expr, pe.Field)
		}
	}
}
