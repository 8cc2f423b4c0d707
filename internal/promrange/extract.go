package promrange

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/common/model"
)

var ErrNoData = errors.New("no data returned for query")

type Point struct {
	T time.Time
	V float64 // NaN marks a missing sample
}

type Series struct {
	Label  string
	Points []Point
}

// Extract converts a backend matrix into named series. Legend names follow,
// in order: the preferred label when present, then the value of the first
// label key in lexicographic order that is neither "instance" nor "job",
// then a synthetic name from whatever identifies the stream. Names are
// unique per call; duplicates get a " #n" suffix.
//
// Label keys are ordered lexicographically on purpose: the backend does not
// guarantee a serialization order, and a fixed ordering keeps the chosen
// legend reproducible.
func Extract(matrix model.Matrix, preferred string) ([]Series, error) {
	if len(matrix) == 0 {
		return nil, ErrNoData
	}
	used := map[string]bool{}
	out := make([]Series, 0, len(matrix))
	for i, stream := range matrix {
		pts := make([]Point, len(stream.Values))
		for j, sp := range stream.Values {
			// Stale/non-numeric samples arrive as NaN and stay NaN;
			// gap handling belongs to the renderer.
			pts[j] = Point{T: sp.Timestamp.Time().UTC(), V: float64(sp.Value)}
		}
		out = append(out, Series{
			Label:  unique(used, legendFor(stream.Metric, preferred, i)),
			Points: pts,
		})
	}
	return out, nil
}

func legendFor(m model.Metric, preferred string, pos int) string {
	if preferred != "" {
		if v, ok := m[model.LabelName(preferred)]; ok {
			return string(v)
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "instance" || k == "job" {
			continue
		}
		return string(m[model.LabelName(k)])
	}
	if v, ok := m["instance"]; ok {
		return "instance " + string(v)
	}
	if v, ok := m["job"]; ok {
		return "job " + string(v)
	}
	return fmt.Sprintf("series %d", pos+1)
}

// unique reserves a free legend name: the suffixed candidates are recorded
// too, so a later natural label cannot collide with a generated one.
func unique(used map[string]bool, label string) string {
	name := label
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s #%d", label, n)
	}
	used[name] = true
	return name
}
