package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for background jobs.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	warmed   *prometheus.CounterVec
	stages   *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the job metrics against the provided registerer. When the
// registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker provides lifecycle instrumentation helpers for a single job run.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track spawns a tracker for the given job name.
func (m *Metrics) Track(job string) *Tracker {
	if m == nil {
		return &Tracker{job: job, start: time.Now()}
	}
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End finalises the tracker, recording duration, success/failure counts and
// returning the provided error untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.metrics.failures.WithLabelValues(t.job).Inc()
	}
	t.metrics.runs.WithLabelValues(t.job, status).Inc()
	t.metrics.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// AddWarmed counts cache scopes loaded by a warmup job, split by outcome.
func (m *Metrics) AddWarmed(cache string, warmed, failed int) {
	if m == nil {
		return
	}
	if warmed > 0 {
		m.warmed.WithLabelValues(cache, "warmed").Add(float64(warmed))
	}
	if failed > 0 {
		m.warmed.WithLabelValues(cache, "failed").Add(float64(failed))
	}
}

// IncStage counts repair job stage updates driven by quotation status changes.
func (m *Metrics) IncStage(stage string) {
	if m == nil || stage == "" {
		return
	}
	m.stages.WithLabelValues(stage).Inc()
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bodyshop_jobs_total",
		Help: "Total job executions partitioned by job name and status.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bodyshop_jobs_failures_total",
		Help: "Total failures observed for background jobs.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bodyshop_job_duration_seconds",
		Help:    "Duration in seconds of background job executions.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	warmed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bodyshop_cache_warmup_scopes_total",
		Help: "Cache scopes processed by warmup jobs grouped by cache and outcome.",
	}, []string{"cache", "outcome"})
	stages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bodyshop_repair_job_stage_updates_total",
		Help: "Repair job stage updates applied from quotation status changes.",
	}, []string{"stage"})
	registerer.MustRegister(runs, failures, duration, warmed, stages)
	return &Metrics{runs: runs, failures: failures, duration: duration, warmed: warmed, stages: stages}
}
