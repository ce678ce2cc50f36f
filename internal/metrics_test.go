package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrapeMetrics(t *testing.T, metrics *Metrics) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 from metrics handler, got %d", w.Code)
	}
	return w.Body.String()
}

func TestMetricsMiddlewareRecordsRequests(t *testing.T) {
	metrics := NewMetrics()

	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	testReq := httptest.NewRequest("GET", "/health", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	if testW.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", testW.Code)
	}
	if testW.Body.String() != "ok" {
		t.Errorf("Expected body 'ok', got '%s'", testW.Body.String())
	}

	body := scrapeMetrics(t, metrics)
	for _, metric := range []string{"http_requests_total", "http_request_duration_seconds"} {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric '%s' not found in response", metric)
		}
	}
	if !strings.Contains(body, `path="/health"`) {
		t.Error("Expected metrics to contain path label for /health endpoint")
	}
}

func TestMetricsMiddlewareUsesChiRoutePatterns(t *testing.T) {
	metrics := NewMetrics()

	router := chi.NewRouter()
	router.Use(metrics.Middleware())
	router.Get("/holdings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("holding"))
	})

	testReq := httptest.NewRequest("GET", "/holdings/123", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	body := scrapeMetrics(t, metrics)

	// The route pattern, not the concrete path, is the label
	if !strings.Contains(body, `path="/holdings/{id}"`) {
		t.Error("Expected metrics to contain Chi route pattern, not actual path")
	}
	if strings.Contains(body, `path="/holdings/123"`) {
		t.Error("Concrete request path leaked into the path label")
	}
}

func TestRequestResolvedCounter(t *testing.T) {
	metrics := NewMetrics()

	metrics.RequestResolved("transfer", "Approved")
	metrics.RequestResolved("transfer", "Approved")
	metrics.RequestResolved("withdrawal", "Rejected")

	body := scrapeMetrics(t, metrics)
	if !strings.Contains(body, `workflow_requests_resolved_total{kind="transfer",status="Approved"} 2`) {
		t.Error("Expected two approved transfers in workflow_requests_resolved_total")
	}
	if !strings.Contains(body, `workflow_requests_resolved_total{kind="withdrawal",status="Rejected"} 1`) {
		t.Error("Expected one rejected withdrawal in workflow_requests_resolved_total")
	}
}

func TestAlertRaisedCounter(t *testing.T) {
	metrics := NewMetrics()

	metrics.AlertRaised("High")
	metrics.AlertRaised("High")
	metrics.AlertRaised("Low")

	body := scrapeMetrics(t, metrics)
	if !strings.Contains(body, `reconciliation_alerts_total{severity="High"} 2`) {
		t.Error("Expected two High alerts in reconciliation_alerts_total")
	}
	if !strings.Contains(body, `reconciliation_alerts_total{severity="Low"} 1`) {
		t.Error("Expected one Low alert in reconciliation_alerts_total")
	}
}
