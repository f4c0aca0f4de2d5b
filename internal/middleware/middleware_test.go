package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skillsage/interview/internal/models"
)

func TestValidateRequestAcceptsValidBody(t *testing.T) {
	var captured *models.AdvanceRequest
	handler := ValidateRequest[*models.AdvanceRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetValidatedRequest[*models.AdvanceRequest](r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/next/1", strings.NewReader(`{"response": "my answer"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured == nil || captured.Response != "my answer" {
		t.Fatalf("validated request not stored in context: %+v", captured)
	}
}

func TestValidateRequestRejectsInvalidJSON(t *testing.T) {
	handler := ValidateRequest[*models.AdvanceRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for invalid JSON")
	}))

	req := httptest.NewRequest(http.MethodPost, "/next/1", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_json") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestValidateRequestRejectsFailedValidation(t *testing.T) {
	handler := ValidateRequest[*models.AdvanceRequest]()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for an invalid request")
	}))

	req := httptest.NewRequest(http.MethodPost, "/next/1", strings.NewReader(`{"response": "  "}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing_response") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRequireCandidate(t *testing.T) {
	var seen string
	handler := RequireCandidate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CandidateID(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/start_interview/1", nil)
	req.Header.Set(CandidateHeader, "candidate-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen != "candidate-42" {
		t.Fatalf("candidate ID not propagated, got %q", seen)
	}
}

func TestRequireCandidateMissingHeader(t *testing.T) {
	handler := RequireCandidate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without identity")
	}))

	req := httptest.NewRequest(http.MethodGet, "/start_interview/1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing_candidate") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCandidateIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if CandidateID(req) != "" {
		t.Fatal("expected empty candidate ID outside the middleware")
	}
}
