package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skillsage/interview/internal/engine"
	"skillsage/interview/internal/llm"
	"skillsage/interview/internal/middleware"
	"skillsage/interview/internal/models"
	"skillsage/interview/internal/resume"
	"skillsage/interview/internal/testhelpers"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockGateway struct {
	generateFunc func(ctx context.Context, req llm.QuestionRequest) (*models.QuestionResult, error)
	gradeFunc    func(ctx context.Context, req llm.GradeRequest) (*models.GradeResult, error)
	rephraseFunc func(ctx context.Context, question string) (string, error)
	feedbackFunc func(ctx context.Context, req llm.AssessmentRequest) (*models.FinalFeedback, error)
	metricsFunc  func(ctx context.Context, req llm.AssessmentRequest) (*models.EvaluationScores, error)
}

func (m *mockGateway) GenerateQuestion(ctx context.Context, req llm.QuestionRequest) (*models.QuestionResult, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return &models.QuestionResult{Question: "generated question"}, nil
}

func (m *mockGateway) GradeAnswer(ctx context.Context, req llm.GradeRequest) (*models.GradeResult, error) {
	if m.gradeFunc != nil {
		return m.gradeFunc(ctx, req)
	}
	return &models.GradeResult{Feedback: "good answer", Marks: 7}, nil
}

func (m *mockGateway) RephraseQuestion(ctx context.Context, question string) (string, error) {
	if m.rephraseFunc != nil {
		return m.rephraseFunc(ctx, question)
	}
	return "rephrased: " + question, nil
}

func (m *mockGateway) GenerateFinalFeedback(ctx context.Context, req llm.AssessmentRequest) (*models.FinalFeedback, error) {
	if m.feedbackFunc != nil {
		return m.feedbackFunc(ctx, req)
	}
	return &models.FinalFeedback{Strengths: "s", Weaknesses: "w", Summary: "sum"}, nil
}

func (m *mockGateway) GenerateEvaluationMetrics(ctx context.Context, req llm.AssessmentRequest) (*models.EvaluationScores, error) {
	if m.metricsFunc != nil {
		return m.metricsFunc(ctx, req)
	}
	return nil, &llm.ProviderError{Provider: "mock", Code: llm.ErrCodeNotImplemented, Message: "not implemented"}
}

func (m *mockGateway) ProviderName() string { return "mock" }

var _ llm.Gateway = (*mockGateway)(nil)

// newSessionRouter wires the session handler into the same route shapes the
// service registers, so path parameters and middleware behave as in production.
func newSessionRouter(t *testing.T, gateway llm.Gateway) (*chi.Mux, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	eng := engine.New(db, gateway, resume.NewStore(db), zap.NewNop(), 3)
	handler := NewSessionHandler(eng, zap.NewNop())

	router := chi.NewRouter()
	router.Route("/interview", func(r chi.Router) {
		r.Use(middleware.RequireCandidate)
		r.Get("/start_interview/{interviewID}", handler.StartHandler)
		r.With(middleware.ValidateRequest[*models.AdvanceRequest]()).Post("/next/{interviewID}", handler.NextHandler)
		r.Get("/reframe/{interviewID}", handler.ReframeHandler)
		r.Get("/submit/{interviewID}", handler.SubmitHandler)
		r.Get("/review/{interviewID}", handler.ReviewHandler)
		r.Get("/eval_metrics", handler.EvalMetricsHandler)
	})
	return router, db
}

func seedActiveInterview(t *testing.T, db *gorm.DB, conceptual, coding int) *models.Interview {
	t.Helper()
	interview := &models.Interview{
		Name:                "Backend Interview",
		Subject:             "Computer Science",
		Topic:               "Concurrency",
		NoOfQuestions:       conceptual,
		NoOfCodingQuestions: coding,
		Status:              models.InterviewStatusActive,
	}
	if err := db.Create(interview).Error; err != nil {
		t.Fatalf("failed to seed interview: %v", err)
	}
	return interview
}

func performRequest(router http.Handler, method, path, candidateID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if candidateID != "" {
		req.Header.Set(middleware.CandidateHeader, candidateID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
