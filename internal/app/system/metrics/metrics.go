// Package metrics exposes the service's Prometheus collectors.
//
// All Observe methods are safe on a nil *Metrics so components can run
// without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stratatools"

// Metrics holds every collector the service records into.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration   *prometheus.HistogramVec
	submissions    *prometheus.CounterVec
	decisions      *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	catalogQueries *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	subscriptions  *prometheus.CounterVec
	jobRuns        *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
}

// New registers the collectors on registry. A nil registry gets a fresh one
// with the Go runtime and process collectors attached.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests by route pattern",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Tool submissions received, by outcome",
			},
			[]string{"outcome"},
		),
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submission_decisions_total",
				Help:      "Moderation decisions, by decision and result",
			},
			[]string{"decision", "result"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_rows_total",
				Help:      "CSV rows processed by bulk upload, by result",
			},
			[]string{"result"},
		),
		catalogQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_queries_total",
				Help:      "Catalog engine queries, by operation",
			},
			[]string{"op"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_cache_lookups_total",
				Help:      "Catalog snapshot cache lookups, by result",
			},
			[]string{"result"},
		),
		subscriptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "newsletter_subscriptions_total",
				Help:      "Newsletter subscribe requests, by result",
			},
			[]string{"result"},
		),
		jobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "job_runs_total",
				Help:      "Background job executions, by job and status",
			},
			[]string{"job", "status"},
		),
		jobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "Background job run time",
				Buckets:   []float64{.01, .05, .1, .5, 1, 5, 30, 120},
			},
			[]string{"job"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request duration labelled by chi route pattern,
// so /api/tools/{id} is one series rather than one per id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// ObserveSubmission counts a submit attempt ("accepted" or "invalid").
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// ObserveDecision counts an approve/reject call and whether it succeeded.
func (m *Metrics) ObserveDecision(decision string, err error) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision, result(err)).Inc()
}

// ObserveImport adds the row counts of one bulk upload.
func (m *Metrics) ObserveImport(succeeded, failed, skipped int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("succeeded").Add(float64(succeeded))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
	m.importRows.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveQuery counts a catalog engine operation.
func (m *Metrics) ObserveQuery(op string) {
	if m == nil {
		return
	}
	m.catalogQueries.WithLabelValues(op).Inc()
}

// ObserveCache counts a snapshot cache lookup ("hit", "miss" or "error").
func (m *Metrics) ObserveCache(res string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(res).Inc()
}

// ObserveSubscription counts a newsletter subscribe ("added", "existing" or "invalid").
func (m *Metrics) ObserveSubscription(res string) {
	if m == nil {
		return
	}
	m.subscriptions.WithLabelValues(res).Inc()
}

// ObserveJob records one background job execution.
func (m *Metrics) ObserveJob(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, result(err)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
