package probe

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/viniciushammett/go-prom-grapher/internal/logger"
	"github.com/viniciushammett/go-prom-grapher/internal/metrics"
)

func TestCheck(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/-/healthy" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer backend.Close()

	log := logger.New("error")
	p := New(log, backend.URL, time.Second)
	p.check()
	if got := testutil.ToFloat64(metrics.BackendUp); got != 1 {
		t.Fatalf("backend_up=%v want 1", got)
	}

	backend.Close()
	p.check()
	if got := testutil.ToFloat64(metrics.BackendUp); got != 0 {
		t.Fatalf("backend_up=%v want 0", got)
	}
}
