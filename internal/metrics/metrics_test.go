package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMiddlewareRecordsAndPassesThrough(t *testing.T) {
	handler := Middleware("test-service")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/some/path", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("middleware must not change status, got %d", rec.Code)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	RecordOperation("start", nil)
	RecordOperation("start", errors.New("boom"))
	ObserveGateway("grade_answer", time.Now(), nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics endpoint, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "skillsage_engine_operations_total") {
		t.Fatalf("engine operation counter missing from exposition")
	}
	if !strings.Contains(body, "skillsage_gateway_call_duration_seconds") {
		t.Fatalf("gateway latency histogram missing from exposition")
	}
}
