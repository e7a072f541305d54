// Package metrics records operational counters for the dashboard pipeline
// on a private Prometheus registry. A nil *Recorder is valid and records
// nothing, so callers never need to check whether metrics are enabled.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the collectors.
type Recorder struct {
	reg *prometheus.Registry

	loads       *prometheus.CounterVec   // salesdash_dataset_loads_total
	rows        *prometheus.CounterVec   // salesdash_rows_total
	insights    *prometheus.CounterVec   // salesdash_insight_requests_total
	insightTime prometheus.Histogram     // salesdash_insight_duration_seconds
	requests    *prometheus.CounterVec   // salesdash_http_requests_total
	reqTime     *prometheus.HistogramVec // salesdash_http_request_duration_seconds
}

// New registers every collector on a fresh registry.
func New() (*Recorder, error) {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesdash_dataset_loads_total",
			Help: "Dataset loads partitioned by status (ok, cached, unavailable, unreadable).",
		}, []string{"status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesdash_rows_total",
			Help: "Rows seen by the schema normalizer, partitioned by kind (read, kept, dropped).",
		}, []string{"kind"}),
		insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesdash_insight_requests_total",
			Help: "Insight summarizer calls partitioned by outcome.",
		}, []string{"outcome"}),
		insightTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salesdash_insight_duration_seconds",
			Help:    "Latency of language model requests.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salesdash_http_requests_total",
			Help: "HTTP requests partitioned by route and status code.",
		}, []string{"method", "route", "code"}),
		reqTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salesdash_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	for name, c := range map[string]prometheus.Collector{
		"dataset loads":    r.loads,
		"rows":             r.rows,
		"insight requests": r.insights,
		"insight duration": r.insightTime,
		"http requests":    r.requests,
		"http duration":    r.reqTime,
	} {
		if err := r.reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}
	return r, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// DatasetLoaded counts a load and the normalizer row counts.
func (r *Recorder) DatasetLoaded(status string, read, kept, dropped int) {
	if r == nil {
		return
	}
	r.loads.WithLabelValues(status).Inc()
	r.rows.WithLabelValues("read").Add(float64(read))
	r.rows.WithLabelValues("kept").Add(float64(kept))
	r.rows.WithLabelValues("dropped").Add(float64(dropped))
}

// Insight counts a summarizer call. A zero duration is not observed.
func (r *Recorder) Insight(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.insights.WithLabelValues(outcome).Inc()
	if d > 0 {
		r.insightTime.Observe(d.Seconds())
	}
}

// HTTPRequest counts a served request.
func (r *Recorder) HTTPRequest(method, route string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.reqTime.WithLabelValues(route).Observe(d.Seconds())
}
