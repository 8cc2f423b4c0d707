// Package timeexpr resolves user-supplied time expressions into instants.
//
// Three shapes are accepted: the literal "now", an absolute timestamp
// "YYYY-MM-DD HH:MM:SS", and a relative offset "<n><unit>" with unit one of
// s, min, h, d, w. Relative offsets count back from now.
package timeexpr

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const absoluteLayout = "2006-01-02 15:04:05"

// Unit tokens are matched case-sensitively; anything else is rejected.
var unitSeconds = map[string]time.Duration{
	"s":   time.Second,
	"min": time.Minute,
	"h":   time.Hour,
	"d":   24 * time.Hour,
	"w":   7 * 24 * time.Hour,
}

var relativeRe = regexp.MustCompile(`^(\d+)([a-zA-Z]+)$`)

// ParseError reports an expression that matched no grammar, naming the
// request field (start or end) it came from.
type ParseError struct {
	Field string
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time expression for %q: %q", e.Field, e.Input)
}

// Resolve turns expr into an instant relative to now. All instants are
// carried in UTC.
func Resolve(expr string, now time.Time, field string) (time.Time, error) {
	if expr == "now" {
		return now, nil
	}
	if t, err := time.Parse(absoluteLayout, expr); err == nil {
		return t.UTC(), nil
	}
	m := relativeRe.FindStringSubmatch(expr)
	if m == nil {
		return time.Time{}, &ParseError{Field: field, Input: expr}
	}
	unit, ok := unitSeconds[m[2]]
	if !ok {
		return time.Time{}, &ParseError{Field: field, Input: expr}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Input: expr}
	}
	return now.Add(-time.Duration(n) * unit), nil
}
