package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.InvoiceCreated()

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "voyageos_invoices_created_total 1")
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	metricsRR := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := metricsRR.Body.String()
	assert.True(t, strings.Contains(body, `voyageos_http_requests_total{code="418",route="/test"} 1`), body)
	assert.Contains(t, body, `voyageos_http_request_duration_seconds_bucket{route="/test"`)
}

func TestDomainCounters(t *testing.T) {
	m := NewMetrics()
	m.ObserveDocument("invoice", "local")
	m.ObserveDocument("invoice", "local")
	m.QuotationCreated()
	m.QuotationTransition("SENT", "CONFIRMED")
	m.PaymentRecorded("CASH")
	m.OverdueMarked(3)
	m.OverdueMarked(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("invoice", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("SENT", "CONFIRMED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("CASH")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.overdue))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveDocument("voucher", "gotenberg")
	m.PaymentRecorded("CARD")
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
