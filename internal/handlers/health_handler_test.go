package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillsage/interview/internal/config"
	"skillsage/interview/internal/testhelpers"
)

func TestHealthzHandler(t *testing.T) {
	handler := NewHealthHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.HealthzHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "interview" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadyzHandlerReady(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	handler := NewHealthHandler(&mockGateway{}, db, &config.Config{Provider: "gemini"})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	handler.ReadyzHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ReadinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "ready" {
		t.Fatalf("expected ready, got %s", resp.Status)
	}
	for name, check := range resp.Checks {
		if check.Status != "ok" {
			t.Fatalf("check %s failed: %+v", name, check)
		}
	}
}

func TestReadyzHandlerNotReady(t *testing.T) {
	handler := NewHealthHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	handler.ReadyzHandler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp ReadinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != "not_ready" {
		t.Fatalf("expected not_ready, got %s", resp.Status)
	}
	for _, name := range []string{"gateway", "database", "configuration"} {
		if resp.Checks[name].Status != "failed" {
			t.Fatalf("expected %s check to fail: %+v", name, resp.Checks[name])
		}
	}
}
