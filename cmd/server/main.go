package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/viniciushammett/go-prom-grapher/internal/api"
	"github.com/viniciushammett/go-prom-grapher/internal/config"
	"github.com/viniciushammett/go-prom-grapher/internal/logger"
	"github.com/viniciushammett/go-prom-grapher/internal/metrics"
	"github.com/viniciushammett/go-prom-grapher/internal/probe"
	"github.com/viniciushammett/go-prom-grapher/internal/promrange"
	"github.com/viniciushammett/go-prom-grapher/internal/tracing"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	log := logger.New(env("LOG_LEVEL", "info"))

	var cfgPath, addr, backend string
	root := &cobra.Command{
		Use:     "prom-grapher",
		Short:   "Render Prometheus range queries as PNG line charts over HTTP",
		Version: version + " (" + commit + ")",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if backend != "" {
				cfg.Backend.URL = backend
			}
			return run(log, cfg)
		},
	}
	root.Flags().StringVar(&cfgPath, "config", env("CONFIG_PATH", ""), "path to yaml config (optional)")
	root.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	root.Flags().StringVar(&backend, "backend", "", "default Prometheus base URL (overrides config)")

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}

func run(log *logger.Logger, cfg *config.Config) error {
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	closer, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    first(cfg.Tracing.ServiceName, "go-prom-grapher"),
		ServiceVersion: version,
		OTLPEndpoint:   first(cfg.Tracing.OTLPEndpoint, "localhost:4317"),
		SampleRatio:    ifzero(cfg.Tracing.SampleRatio, 1.0),
	})
	if err != nil {
		log.Error().Err(err).Msg("tracing init failed")
	} else {
		defer func() { _ = closer(context.Background()) }()
	}

	if cfg.Probe.Enabled {
		p := probe.New(log, cfg.Backend.URL, cfg.Backend.Timeout.Std())
		if err := p.Start(cfg.Probe.Every.Std()); err != nil {
			return err
		}
		defer p.Stop()
	}

	srv := api.NewServer(api.Deps{
		Log:    log,
		Config: cfg,
		NewQuerier: func(baseURL string) (api.Querier, error) {
			return promrange.NewClient(baseURL, cfg.Backend.Timeout.Std())
		},
	}, api.Config{Addr: cfg.Server.Addr})
	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func env(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
func first(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
func ifzero(f, def float64) float64 {
	if f == 0 {
		return def
	}
	return f
}
