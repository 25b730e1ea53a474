// Package metrics holds the Prometheus collectors of the crawler.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawl_pages_fetched_total",
		Help: "Total number of pages successfully fetched",
	})
	BytesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawl_bytes_fetched_total",
		Help: "Total bytes downloaded",
	})
	RelayAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sitecrawl_relay_attempts_total",
		Help: "Fetch attempts per relay and outcome",
	}, []string{"relay", "outcome"})
	InflightRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sitecrawl_inflight_requests",
		Help: "Transport requests currently outstanding",
	})
	PagesQueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawl_pages_queued_total",
		Help: "URLs accepted into the frontier",
	})
	PagesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sitecrawl_pages_processed_total",
		Help: "Pages processed, by verdict",
	}, []string{"verdict"})
	RepollDiscovered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawl_repoll_discovered_total",
		Help: "New links found by home page re-polls",
	})
)

func init() {
	prometheus.MustRegister(
		PagesFetched, BytesFetched, RelayAttempts, InflightRequests,
		PagesQueued, PagesProcessed, RepollDiscovered,
	)
}

// Handler serves the default registry on /metrics.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	srv := &http.Server{Addr: addr, Handler: Handler(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
