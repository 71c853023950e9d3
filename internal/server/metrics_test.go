package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsEndpoint_ExposesCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := newServerMetrics(reg)
	m.chatRequestsTotal.WithLabelValues("ok").Inc()
	m.indexerRunsTotal.WithLabelValues("ok").Inc()

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "kagent_chat_requests_total") {
		t.Error("expected chat requests counter in /metrics output")
	}
	if !strings.Contains(body, "kagent_indexer_runs_total") {
		t.Error("expected indexer runs counter in /metrics output")
	}
}

func TestPrometheusTimer_RecordsObservation(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := newServerMetrics(reg)

	stop := prometheusTimer(m.chatDurationSeconds)
	stop("ok")

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "kagent_chat_duration_seconds") {
		t.Error("expected chat duration histogram in /metrics output")
	}
}

func TestChatActiveRequests_GaugeExposed(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := newServerMetrics(reg)
	m.chatActiveRequests.Inc()
	defer m.chatActiveRequests.Dec()

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "kagent_chat_active_requests") {
		t.Error("expected chat active requests gauge in /metrics output")
	}
}
