package jobmetrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics collects worker-side counters: task outcomes, how much each task
// touched (invoices flagged, keys pruned, documents archived) and the bytes
// shipped to the archive bucket.
type Metrics struct {
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	processed   *prometheus.CounterVec
	lastSuccess *prometheus.GaugeVec
	archived    prometheus.Counter
	gatherer    prometheus.Gatherer
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the worker collectors. A nil registerer means the
// process-wide default registry, shared by every caller. When the registerer
// is also a Gatherer (a *prometheus.Registry) Handler serves from it.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
		})
		return defaultMetrics
	}
	gatherer, ok := registerer.(prometheus.Gatherer)
	if !ok {
		gatherer = prometheus.DefaultGatherer
	}
	return buildMetrics(registerer, gatherer)
}

func buildMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voyageos_jobs_total",
			Help: "Task executions by task type and outcome.",
		}, []string{"task", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voyageos_job_duration_seconds",
			Help:    "Task execution time.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"task"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voyageos_jobs_processed_items_total",
			Help: "Rows or objects a task acted on.",
		}, []string{"task"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voyageos_jobs_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per task.",
		}, []string{"task"}),
		archived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voyageos_archive_bytes_total",
			Help: "PDF bytes uploaded to the document archive.",
		}),
		gatherer: gatherer,
	}
	registerer.MustRegister(m.runs, m.duration, m.processed, m.lastSuccess, m.archived)
	return m
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ArchivedBytes adds n uploaded bytes.
func (m *Metrics) ArchivedBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.archived.Add(float64(n))
}

// Tracker instruments one task run.
type Tracker struct {
	metrics *Metrics
	task    string
	start   time.Time
	now     func() time.Time
}

// Track starts timing a run of task.
func (m *Metrics) Track(task string) *Tracker {
	return &Tracker{metrics: m, task: task, start: time.Now(), now: time.Now}
}

// Processed records how many items the run acted on.
func (t *Tracker) Processed(n int64) {
	if t == nil || t.metrics == nil || n <= 0 {
		return
	}
	t.metrics.processed.WithLabelValues(t.task).Add(float64(n))
}

// End records the outcome and returns err unchanged.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.task == "" {
		return err
	}
	end := t.now()
	t.metrics.duration.WithLabelValues(t.task).Observe(end.Sub(t.start).Seconds())
	if err != nil {
		t.metrics.runs.WithLabelValues(t.task, statusFailure).Inc()
		return err
	}
	t.metrics.runs.WithLabelValues(t.task, statusSuccess).Inc()
	t.metrics.lastSuccess.WithLabelValues(t.task).Set(float64(end.Unix()))
	return nil
}
