// Package probe periodically checks the default backend's health endpoint
// and feeds the backend-up gauge. Request handling never depends on it; it
// only gives operators a signal before graphs start failing.
package probe

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/viniciushammett/go-prom-grapher/internal/logger"
	"github.com/viniciushammett/go-prom-grapher/internal/metrics"
)

type Probe struct {
	log    *logger.Logger
	url    string
	client *http.Client
	cron   *cron.Cron
}

func New(log *logger.Logger, backendURL string, timeout time.Duration) *Probe {
	return &Probe{
		log:    log,
		url:    strings.TrimRight(backendURL, "/") + "/-/healthy",
		client: &http.Client{Timeout: timeout},
		cron:   cron.New(),
	}
}

func (p *Probe) Start(every time.Duration) error {
	if _, err := p.cron.AddFunc(fmt.Sprintf("@every %s", every), p.check); err != nil {
		return fmt.Errorf("schedule probe: %w", err)
	}
	p.check()
	p.cron.Start()
	p.log.Info().Str("url", p.url).Dur("every", every).Msg("backend probe started")
	return nil
}

func (p *Probe) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Probe) check() {
	resp, err := p.client.Get(p.url)
	if err != nil {
		metrics.BackendUp.Set(0)
		p.log.Warn().Err(err).Msg("backend probe failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		metrics.BackendUp.Set(1)
	} else {
		metrics.BackendUp.Set(0)
		p.log.Warn().Int("code", resp.StatusCode).Msg("backend probe unhealthy")
	}
}
