package llm

import (
	"context"
	"errors"

	"skillsage/interview/internal/models"
)

// defines the interface for the generation gateway consumed by the session
// engine: question authoring, free-text grading, rephrasing and the final
// assessment. Implementations own all prompt content and output parsing.
type Gateway interface {
	GenerateQuestion(ctx context.Context, req QuestionRequest) (*models.QuestionResult, error)
	GradeAnswer(ctx context.Context, req GradeRequest) (*models.GradeResult, error)
	RephraseQuestion(ctx context.Context, question string) (string, error)
	GenerateFinalFeedback(ctx context.Context, req AssessmentRequest) (*models.FinalFeedback, error)
	GenerateEvaluationMetrics(ctx context.Context, req AssessmentRequest) (*models.EvaluationScores, error)
	ProviderName() string
}

// QuestionRequest asks for the question of one slot. History is empty for
// the opening question; later slots receive the full exchange history so the
// provider can adapt difficulty and topic selection itself.
type QuestionRequest struct {
	Kind          models.ExchangeKind
	Subject       string
	Topic         string
	ResumeContext string
	History       []models.InterviewExchange
}

// GradeRequest asks for feedback and marks on one answered exchange. Code is
// only set for coding slots.
type GradeRequest struct {
	Kind     models.ExchangeKind
	Question string
	Code     string
	Response string
}

// AssessmentRequest asks for the end-of-interview feedback or evaluation
// scores over the complete transcript.
type AssessmentRequest struct {
	Subject       string
	Topic         string
	ResumeContext string
	History       []models.InterviewExchange
}

// represents an error from a gateway provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes across providers.
const (
	ErrCodeAPIKey         = "invalid_api_key"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeServiceDown    = "service_unavailable"
	ErrCodeTimeout        = "timeout"
	ErrCodeMalformed      = "malformed_output"
	ErrCodeNotImplemented = "not_implemented"
)

// IsNotImplemented reports whether err marks a capability the provider does
// not support yet, as opposed to a failed call.
func IsNotImplemented(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Code == ErrCodeNotImplemented
}
