package promrange

import (
	"errors"
	"testing"
	"time"
)

func TestNewRange(t *testing.T) {
	end := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		start   time.Time
		step    time.Duration
		wantErr bool
	}{
		{"start before end", end.Add(-time.Hour), 0, false},
		{"start equals end", end, 0, false},
		{"start after end", end.Add(time.Second), 0, true},
		{"explicit step", end.Add(-time.Hour), 30 * time.Second, false},
	}
	for _, tt := range tests {
		r, err := NewRange(tt.start, end, tt.step, DefaultStepPolicy)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("%s: err=%v want ErrInvalidRange", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected err=%v", tt.name, err)
		}
		if tt.step != 0 && r.Step != tt.step {
			t.Fatalf("%s: step=%v want=%v", tt.name, r.Step, tt.step)
		}
	}
}

func TestDerivedStep(t *testing.T) {
	end := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		window time.Duration
		want   time.Duration
	}{
		{time.Minute, 15 * time.Second},         // short window hits the floor
		{100 * 15 * time.Second, 15 * time.Second},
		{10000 * time.Second, 100 * time.Second}, // window/100
		{0, 15 * time.Second},
	}
	for _, tt := range tests {
		r, err := NewRange(end.Add(-tt.window), end, 0, DefaultStepPolicy)
		if err != nil {
			t.Fatalf("window=%v: %v", tt.window, err)
		}
		if r.Step != tt.want {
			t.Fatalf("window=%v step=%v want=%v", tt.window, r.Step, tt.want)
		}
	}
}
