package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/pcouderc/worksched/core/metrics"
)

// PromSink records workspace activity in Prometheus metrics.
type PromSink struct {
	mutations *prometheus.CounterVec
	applies   *prometheus.CounterVec
	latency   prometheus.Histogram
	pending   prometheus.Gauge
	capacity  *prometheus.GaugeVec
}

// NewPromSink registers workspace metrics on the default Prometheus
// registerer. The metrics HTTP server is started separately with
// StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workspace_mutations_total",
		Help: "Total number of workspace mutations",
	}, []string{"scope", "op", "mode"})
	applies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workspace_applies_total",
		Help: "Total number of overlay apply attempts",
	}, []string{"scope", "failed"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "workspace_apply_duration_seconds",
		Help:    "Duration of overlay replays against the backend",
		Buckets: prometheus.DefBuckets,
	})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "workspace_apply_pending_ops",
		Help: "Operations left staged after the last apply attempt",
	})
	capacity := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "workspace_capacity_hours",
		Help: "Capacity summary in hours for the current view",
	}, []string{"scope", "kind"})

	for _, c := range []prometheus.Collector{mutations, applies, latency, pending, capacity} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{
		mutations: mutations,
		applies:   applies,
		latency:   latency,
		pending:   pending,
		capacity:  capacity,
	}, nil
}

// RecordMutation increments the mutation counter.
func (s *PromSink) RecordMutation(rec coremetrics.MutationRecord) error {
	s.mutations.WithLabelValues(rec.Scope, rec.Op, rec.Mode).Inc()
	return nil
}

// RecordApply counts the attempt, observes its duration and tracks how
// many operations stayed behind.
func (s *PromSink) RecordApply(rec coremetrics.ApplyRecord) error {
	s.applies.WithLabelValues(rec.Scope, strconv.FormatBool(rec.Failed)).Inc()
	s.latency.Observe(rec.Duration.Seconds())
	if rec.Failed {
		s.pending.Set(float64(rec.Updates + rec.Creates + rec.Deletes))
	} else {
		s.pending.Set(0)
	}
	return nil
}

// RecordCapacity exposes total and peak hours for the scope. The per-day
// series goes to Influx; per-date labels would blow up cardinality here.
func (s *PromSink) RecordCapacity(points []coremetrics.CapacityPoint) error {
	if len(points) == 0 {
		return nil
	}
	scope := points[0].Scope
	var total, peak float64
	for _, p := range points {
		total += p.Hours
		if p.Hours > peak {
			peak = p.Hours
		}
	}
	s.capacity.WithLabelValues(scope, "total").Set(total)
	s.capacity.WithLabelValues(scope, "peak").Set(peak)
	return nil
}

// StartPromServer serves /metrics on the given port. Blocks until the
// server exits.
func StartPromServer(port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("prometheus server: %w", err)
	}
	return nil
}
