package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AngelCh415/ngram-report/internal/filter"
	"github.com/AngelCh415/ngram-report/internal/models"
)

// Metrics owns the service collectors and the registry they live on.
type Metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	reports  *prometheus.CounterVec
	rows     *prometheus.CounterVec
	groups   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ngram_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ngram_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ngram_reports_total",
			Help: "Report runs by outcome.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ngram_rows_total",
			Help: "Input rows by filter stage.",
		}, []string{"stage"}),
		groups: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ngram_groups",
			Help:    "Aggregated groups per report and order.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"order"}),
	}
	m.reg.MustRegister(m.requests, m.latency, m.reports, m.rows, m.groups,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Instrument records request counts and latency by chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sr.status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveRun records one pipeline run.
func (m *Metrics) ObserveRun(st filter.Stats, rep models.Report) {
	outcome := "ok"
	if rep.Empty() {
		outcome = "empty"
	}
	m.reports.WithLabelValues(outcome).Inc()
	m.rows.WithLabelValues("in").Add(float64(st.In))
	m.rows.WithLabelValues("no_product_id").Add(float64(st.NoProductID))
	m.rows.WithLabelValues("other_product").Add(float64(st.OtherProduct))
	m.rows.WithLabelValues("branded").Add(float64(st.Branded))
	m.rows.WithLabelValues("kept").Add(float64(st.Kept))
	for i, s := range rep.Slices() {
		m.groups.WithLabelValues(strconv.Itoa(i + 1)).Observe(float64(len(s)))
	}
}

// ObserveFailure counts a run that ended with an error.
func (m *Metrics) ObserveFailure(kind string) {
	m.reports.WithLabelValues(kind).Inc()
}
