package promrange

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/common/model"
)

func stream(labels map[string]string, values ...float64) *model.SampleStream {
	m := model.Metric{}
	for k, v := range labels {
		m[model.LabelName(k)] = model.LabelValue(v)
	}
	s := &model.SampleStream{Metric: m}
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, v := range values {
		s.Values = append(s.Values, model.SamplePair{
			Timestamp: model.TimeFromUnix(base.Add(time.Duration(i) * 15 * time.Second).Unix()),
			Value:     model.SampleValue(v),
		})
	}
	return s
}

func TestExtractEmpty(t *testing.T) {
	if _, err := Extract(model.Matrix{}, ""); !errors.Is(err, ErrNoData) {
		t.Fatalf("err=%v want ErrNoData", err)
	}
	if _, err := Extract(nil, "whatever"); !errors.Is(err, ErrNoData) {
		t.Fatalf("err=%v want ErrNoData", err)
	}
}

func TestLegendSelection(t *testing.T) {
	tests := []struct {
		name      string
		labels    map[string]string
		preferred string
		want      string
	}{
		{"first non-excluded key", map[string]string{"instance": "a", "job": "b", "method": "GET"}, "", "GET"},
		{"preferred wins", map[string]string{"instance": "a", "method": "GET", "code": "200"}, "code", "200"},
		{"preferred absent falls through", map[string]string{"instance": "a", "method": "GET"}, "nope", "GET"},
		{"lexicographic tie-break", map[string]string{"zeta": "z", "alpha": "a"}, "", "a"},
		{"instance fallback", map[string]string{"instance": "a", "job": "b"}, "", "instance a"},
		{"job fallback", map[string]string{"job": "b"}, "", "job b"},
		{"no labels at all", map[string]string{}, "", "series 1"},
	}
	for _, tt := range tests {
		got, err := Extract(model.Matrix{stream(tt.labels, 1, 2)}, tt.preferred)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got[0].Label != tt.want {
			t.Fatalf("%s: label=%q want=%q", tt.name, got[0].Label, tt.want)
		}
	}
}

func TestLegendUniqueness(t *testing.T) {
	matrix := model.Matrix{
		stream(map[string]string{"instance": "a", "job": "b"}, 1),
		stream(map[string]string{"instance": "a", "job": "b"}, 2),
		stream(map[string]string{"instance": "a", "job": "b"}, 3),
	}
	got, err := Extract(matrix, "")
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, s := range got {
		if s.Label == "" {
			t.Fatal("empty legend label")
		}
		if seen[s.Label] {
			t.Fatalf("duplicate legend label %q", s.Label)
		}
		seen[s.Label] = true
	}
}

func TestLegendUniquenessAgainstSuffixedNaturalLabel(t *testing.T) {
	// a natural label may itself look like a generated suffix
	matrix := model.Matrix{
		stream(map[string]string{"method": "x"}, 1),
		stream(map[string]string{"method": "x"}, 2),
		stream(map[string]string{"method": "x #2"}, 3),
	}
	got, err := Extract(matrix, "")
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, s := range got {
		if s.Label == "" {
			t.Fatal("empty legend label")
		}
		if seen[s.Label] {
			t.Fatalf("duplicate legend label %q", s.Label)
		}
		seen[s.Label] = true
	}
	if got[0].Label != "x" {
		t.Fatalf("first label=%q want %q", got[0].Label, "x")
	}
}

func TestExtractPoints(t *testing.T) {
	got, err := Extract(model.Matrix{stream(map[string]string{"method": "GET"}, 1, math.NaN(), 3)}, "")
	if err != nil {
		t.Fatal(err)
	}
	pts := got[0].Points
	if len(pts) != 3 {
		t.Fatalf("points=%d want 3", len(pts))
	}
	if pts[0].V != 1 || pts[2].V != 3 {
		t.Fatalf("values not preserved: %+v", pts)
	}
	// stale samples pass through as NaN, they are not dropped here
	if !math.IsNaN(pts[1].V) {
		t.Fatalf("missing sample not NaN: %v", pts[1].V)
	}
	if !pts[1].T.After(pts[0].T) || !pts[2].T.After(pts[1].T) {
		t.Fatalf("timestamps out of order: %+v", pts)
	}
}
