// Package metrics exposes the Prometheus collectors used by the analytics
// pipeline and the HTTP surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "invoice_insights"

// Pipeline outcomes
const (
	OutcomeOK             = "ok"
	OutcomeInvalidMapping = "invalid_mapping"
)

// Pipeline records one observation per processing run. A nil *Pipeline is a
// valid no-op recorder.
type Pipeline struct {
	runs        *prometheus.CounterVec
	rowsRead    prometheus.Counter
	rowsDropped prometheus.Counter
	duration    prometheus.Histogram
}

// NewPipeline registers the pipeline collectors on reg
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	f := promauto.With(reg)
	return &Pipeline{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Processing runs by outcome.",
		}, []string{"outcome"}),
		rowsRead: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "rows_read_total",
			Help:      "Raw rows handed to the ledger builder.",
		}),
		rowsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "rows_dropped_total",
			Help:      "Raw rows left out of the ledger because their date did not parse.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a processing run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
}

// ObserveRun records a finished run
func (p *Pipeline) ObserveRun(outcome string, read, dropped int, elapsed time.Duration) {
	if p == nil {
		return
	}
	p.runs.WithLabelValues(outcome).Inc()
	p.rowsRead.Add(float64(read))
	p.rowsDropped.Add(float64(dropped))
	p.duration.Observe(elapsed.Seconds())
}

// HTTP counts requests served by the API. A nil *HTTP is a no-op.
type HTTP struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHTTP registers the HTTP collectors on reg
func NewHTTP(reg prometheus.Registerer) *HTTP {
	f := promauto.With(reg)
	return &HTTP{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveRequest records a served request
func (h *HTTP) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if h == nil {
		return
	}
	h.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	h.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}
