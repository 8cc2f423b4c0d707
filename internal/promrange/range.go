// Package promrange turns resolved time windows into Prometheus range
// queries and converts the matrix responses into plot-ready series.
package promrange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("start time must not be after end time")

// StepPolicy controls how a query step is derived when the caller does not
// supply one: window/MaxPoints, floored at Min. Both bounds keep point
// counts stable across arbitrary windows.
type StepPolicy struct {
	MaxPoints int
	Min       time.Duration
}

var DefaultStepPolicy = StepPolicy{MaxPoints: 100, Min: 15 * time.Second}

type Range struct {
	Start time.Time
	End   time.Time
	Step  time.Duration
}

// NewRange validates the window and fixes the step. step == 0 means derive
// it from the policy; an equal start and end is a valid (single instant)
// window.
func NewRange(start, end time.Time, step time.Duration, pol StepPolicy) (Range, error) {
	if start.After(end) {
		return Range{}, ErrInvalidRange
	}
	if pol.MaxPoints <= 0 {
		pol.MaxPoints = DefaultStepPolicy.MaxPoints
	}
	if pol.Min <= 0 {
		pol.Min = DefaultStepPolicy.Min
	}
	if step <= 0 {
		step = end.Sub(start) / time.Duration(pol.MaxPoints)
		if step < pol.Min {
			step = pol.Min
		}
	}
	return Range{Start: start, End: end, Step: step}, nil
}
