//go:build unix

// Package metrics exports dispatch loop activity in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"dominicbreuker/gosock/pkg/log"
	"dominicbreuker/gosock/pkg/neterr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts accepted connections, accept failures and handler runs.
// It satisfies serve.Observer.
type Collector struct {
	reg *prometheus.Registry

	accepted prometheus.Counter
	failures *prometheus.CounterVec
	active   prometheus.Gauge
	duration prometheus.Histogram
}

// New returns a Collector with its own registry, which also carries the Go
// runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)
	c := &Collector{
		reg: reg,
		accepted: f.NewCounter(prometheus.CounterOpts{
			Name: "gosock_connections_accepted_total",
			Help: "Total number of accepted connections",
		}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gosock_accept_failures_total",
			Help: "Total number of failed accept calls",
		}, []string{"kind"}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Name: "gosock_handlers_active",
			Help: "Number of connection handlers currently running",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gosock_handler_duration_seconds",
			Help:    "Time spent serving one connection",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	// pre-create one series per kind so dashboards see zeros
	for _, k := range neterr.Kinds() {
		if k != neterr.Ok {
			c.failures.WithLabelValues(k.String())
		}
	}

	return c
}

// Accepted records a successful accept.
func (c *Collector) Accepted() {
	c.accepted.Inc()
}

// AcceptFailed records a failed accept by error kind.
func (c *Collector) AcceptFailed(kind neterr.Kind) {
	c.failures.WithLabelValues(kind.String()).Inc()
}

// HandlerStarted records a handler goroutine starting.
func (c *Collector) HandlerStarted() {
	c.active.Inc()
}

// HandlerDone records a handler goroutine returning after elapsed.
func (c *Collector) HandlerDone(elapsed time.Duration) {
	c.active.Dec()
	c.duration.Observe(elapsed.Seconds())
}

// Handler serves the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve exposes the metrics on addr under /metrics until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.InfoMsg("Serving metrics on http://%s/metrics\n", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
