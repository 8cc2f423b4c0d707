// Package graph renders extracted series as a PNG line chart.
package graph

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/viniciushammett/go-prom-grapher/internal/promrange"
)

// Spec is the rendering configuration. Width and Height are in inches, the
// unit the request API exposes; they are scaled to pixels internally.
type Spec struct {
	Title  string
	XLabel string
	YLabel string
	Width  float64
	Height float64
	Legend bool
}

const dpi = 96

// Render draws one line per series, labeled with its legend name. Missing
// samples (NaN) are omitted from the drawn line. Series with fewer than two
// drawable points cannot form a line and are skipped; if nothing remains an
// error is returned.
func Render(series []promrange.Series, spec Spec) ([]byte, error) {
	ch := chart.Chart{
		Title:  spec.Title,
		Width:  int(spec.Width * dpi),
		Height: int(spec.Height * dpi),
		XAxis: chart.XAxis{
			Name:           spec.XLabel,
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04:05"),
		},
		YAxis: chart.YAxis{Name: spec.YLabel},
	}

	for _, s := range series {
		xs := make([]time.Time, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			if math.IsNaN(p.V) {
				continue
			}
			xs = append(xs, p.T)
			ys = append(ys, p.V)
		}
		if len(xs) < 2 {
			continue
		}
		ch.Series = append(ch.Series, chart.TimeSeries{
			Name:    s.Label,
			XValues: xs,
			YValues: ys,
		})
	}
	if len(ch.Series) == 0 {
		return nil, fmt.Errorf("render: no series with enough points to draw")
	}

	if spec.Legend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
