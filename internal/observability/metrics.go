package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the API and the business counters
// reported by the domain services.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	documents   *prometheus.CounterVec
	quotations  prometheus.Counter
	transitions *prometheus.CounterVec
	invoices    prometheus.Counter
	payments    *prometheus.CounterVec
	overdue     prometheus.Counter
}

// NewMetrics initialises the registry with HTTP and domain collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voyageos_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voyageos_http_request_duration_seconds",
		Help:    "HTTP request duration per route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	m := &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voyageos_documents_rendered_total",
			Help: "PDF documents rendered by kind and renderer.",
		}, []string{"kind", "renderer"}),
		quotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voyageos_quotations_created_total",
			Help: "Quotations created.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voyageos_quotation_transitions_total",
			Help: "Quotation status transitions.",
		}, []string{"from", "to"}),
		invoices: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voyageos_invoices_created_total",
			Help: "Invoices created, manually or on confirmation.",
		}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voyageos_payments_recorded_total",
			Help: "Invoice payments recorded by method.",
		}, []string{"method"}),
		overdue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voyageos_invoices_marked_overdue_total",
			Help: "Invoices moved to OVERDUE by the sweep.",
		}),
	}
	registry.MustRegister(requests, duration, m.documents, m.quotations, m.transitions, m.invoices, m.payments, m.overdue)
	return m
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for additional collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
