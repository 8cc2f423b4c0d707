package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/common/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/viniciushammett/go-prom-grapher/internal/config"
	"github.com/viniciushammett/go-prom-grapher/internal/graph"
	"github.com/viniciushammett/go-prom-grapher/internal/logger"
	"github.com/viniciushammett/go-prom-grapher/internal/metrics"
	"github.com/viniciushammett/go-prom-grapher/internal/promrange"
	"github.com/viniciushammett/go-prom-grapher/internal/timeexpr"
)

var tracer = otel.Tracer("api")

// Querier is what the handler needs from a backend client. Tests inject a
// fake; production wires promrange.Client.
type Querier interface {
	QueryRange(ctx context.Context, query string, r promrange.Range) (model.Matrix, error)
}

type Deps struct {
	Log        *logger.Logger
	Config     *config.Config
	NewQuerier func(baseURL string) (Querier, error)
}
type Config struct{ Addr string }
type Server struct {
	d Deps
	c Config
}

func NewServer(d Deps, c Config) *Server { return &Server{d: d, c: c} }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("go-prom-grapher: GET /graph?query=<promql>\n"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { metrics.Handler().ServeHTTP(w, r) })
	r.Get("/graph", s.handleGraph)
	return s.d.Log.HTTP(r)
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.c.Addr, Handler: s.routes()}
	go func() { <-ctx.Done(); _ = srv.Shutdown(context.Background()) }()
	s.d.Log.Info().Str("addr", s.c.Addr).Msg("http listening")
	return srv.ListenAndServe()
}

// graphRequest is the validated, typed form of the /graph query string.
// Raw parameters are rejected here, before any backend call.
type graphRequest struct {
	Server  string
	Queries []string
	Labels  []string
	Range   promrange.Range
	Spec    graph.Spec
}

func (s *Server) parseRequest(q url.Values) (*graphRequest, int, string) {
	get := func(name, def string) string {
		if v := q.Get(name); v != "" {
			return v
		}
		return def
	}

	rawQuery := get("query", "")
	if rawQuery == "" {
		return nil, http.StatusBadRequest, "missing required parameter: query"
	}
	var queries []string
	for _, part := range strings.Split(rawQuery, "|") {
		if part = strings.TrimSpace(part); part != "" {
			queries = append(queries, part)
		}
	}
	if len(queries) == 0 {
		return nil, http.StatusBadRequest, "missing required parameter: query"
	}
	var labels []string
	if raw := get("label", ""); raw != "" {
		labels = strings.Split(raw, "|")
	}

	now := time.Now().UTC()
	start, err := timeexpr.Resolve(get("start", "1min"), now, "start")
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}
	end, err := timeexpr.Resolve(get("end", "now"), now, "end")
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}

	step := s.d.Config.Query.Step.Std()
	if raw := get("step", ""); raw != "" {
		d, err := model.ParseDuration(raw)
		if err != nil {
			return nil, http.StatusBadRequest, "invalid step: " + raw
		}
		step = time.Duration(d)
	}
	rng, err := promrange.NewRange(start, end, step, promrange.StepPolicy{
		MaxPoints: s.d.Config.Query.MaxPoints,
		Min:       s.d.Config.Query.MinStep.Std(),
	})
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}

	spec := graph.Spec{
		Title:  get("title", s.d.Config.Chart.Title),
		XLabel: get("xlabel", s.d.Config.Chart.XLabel),
		YLabel: get("ylabel", s.d.Config.Chart.YLabel),
		Width:  s.d.Config.Chart.Width,
		Height: s.d.Config.Chart.Height,
		Legend: true,
	}
	if raw := get("width", ""); raw != "" {
		spec.Width, err = strconv.ParseFloat(raw, 64)
		if err != nil || spec.Width <= 0 {
			return nil, http.StatusBadRequest, "invalid width: " + raw
		}
	}
	if raw := get("height", ""); raw != "" {
		spec.Height, err = strconv.ParseFloat(raw, 64)
		if err != nil || spec.Height <= 0 {
			return nil, http.StatusBadRequest, "invalid height: " + raw
		}
	}
	if raw := get("legend", ""); raw != "" {
		spec.Legend = strings.EqualFold(raw, "true")
	}

	return &graphRequest{
		Server:  get("server", s.d.Config.Backend.URL),
		Queries: queries,
		Labels:  labels,
		Range:   rng,
		Spec:    spec,
	}, 0, ""
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "GET /graph")
	defer span.End()

	req, code, msg := s.parseRequest(r.URL.Query())
	if code != 0 {
		s.fail(w, code, msg)
		return
	}
	span.SetAttributes(attribute.String("query", strings.Join(req.Queries, "|")))

	querier, err := s.d.NewQuerier(req.Server)
	if err != nil {
		s.fail(w, http.StatusBadRequest, "invalid server: "+err.Error())
		return
	}

	var all []promrange.Series
	for i, sub := range req.Queries {
		preferred := ""
		if i < len(req.Labels) {
			preferred = strings.TrimSpace(req.Labels[i])
		}

		t0 := time.Now()
		matrix, err := querier.QueryRange(ctx, sub, req.Range)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.QueryDuration.WithLabelValues(outcome).Observe(time.Since(t0).Seconds())
		if err != nil {
			s.fail(w, statusFor(err), err.Error())
			return
		}

		series, err := promrange.Extract(matrix, preferred)
		if errors.Is(err, promrange.ErrNoData) {
			// With multiple sub-queries one empty result is not fatal.
			s.d.Log.Warn().Str("query", sub).Msg("no data returned")
			continue
		}
		if err != nil {
			s.fail(w, statusFor(err), err.Error())
			return
		}
		all = append(all, series...)
	}
	if len(all) == 0 {
		s.fail(w, statusFor(promrange.ErrNoData), promrange.ErrNoData.Error())
		return
	}
	metrics.SeriesExtracted.Add(float64(len(all)))
	span.SetAttributes(attribute.Int("series", len(all)))

	t0 := time.Now()
	png, err := graph.Render(all, req.Spec)
	metrics.RenderDuration.Observe(time.Since(t0).Seconds())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.GraphRequests.WithLabelValues("200").Inc()
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func statusFor(err error) int {
	var pe *timeexpr.ParseError
	var be *promrange.BackendError
	switch {
	case errors.As(err, &pe),
		errors.Is(err, promrange.ErrInvalidRange),
		errors.Is(err, promrange.ErrNoData):
		return http.StatusBadRequest
	case errors.As(err, &be):
		if be.Unreachable {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, code int, msg string) {
	metrics.GraphRequests.WithLabelValues(strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
