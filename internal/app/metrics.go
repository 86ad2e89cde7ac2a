package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"parley/pkg/logger"
	"parley/pkg/store"
)

// startMetrics starts the optional metrics/health listener. When no address
// is configured it returns a channel that never fires.
func (a *App) startMetrics(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	if a.eff.MetricsAddr == "" {
		return errCh
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/readyz", readyzHandler)

	srv := &http.Server{Addr: a.eff.MetricsAddr, Handler: mux}

	go func() {
		logger.Info("metrics_listening", zap.String("addr", a.eff.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	return errCh
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// readyzHandler reports readiness of the backing store.
func readyzHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
