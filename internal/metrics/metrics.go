package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	JobsSubmittedTotal *prometheus.CounterVec
	JobPollsTotal      *prometheus.CounterVec
	JobDuration        *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry - для тестов, чтобы не ловить панику от повторной регистрации
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serpclient_requests_total",
				Help: "Total number of scrape requests by source, mode and outcome",
			},
			[]string{"source", "mode", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "serpclient_request_duration_seconds",
				Help:    "End-to-end scrape request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 180},
			},
			[]string{"source", "mode"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "serpclient_requests_in_flight",
				Help: "Number of scrape requests currently being processed",
			},
		),

		JobsSubmittedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serpclient_jobs_submitted_total",
				Help: "Total number of async job submissions",
			},
			[]string{"status"},
		),
		JobPollsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "serpclient_job_polls_total",
				Help: "Total number of job status polls by observed outcome",
			},
			[]string{"outcome"},
		),
		JobDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "serpclient_job_duration_seconds",
				Help:    "Time from job submission to terminal state",
				Buckets: []float64{1, 2, 5, 10, 20, 30, 50, 90},
			},
			[]string{"outcome"},
		),

		CacheHitsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "serpclient_cache_hits_total",
				Help: "Total number of result cache hits",
			},
		),
		CacheMissesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "serpclient_cache_misses_total",
				Help: "Total number of result cache misses",
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordRequest(source, mode, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(source, mode, status).Inc()
	m.RequestDuration.WithLabelValues(source, mode).Observe(duration.Seconds())
}

func (m *Metrics) RecordSubmission(status string) {
	m.JobsSubmittedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordPoll(outcome string) {
	m.JobPollsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordJob(outcome string, duration time.Duration) {
	m.JobDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
