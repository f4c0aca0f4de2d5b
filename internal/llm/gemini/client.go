package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/genai"

	"skillsage/interview/internal/llm"
	"skillsage/interview/internal/metrics"
	"skillsage/interview/internal/models"
	"skillsage/interview/internal/prompts"
	"skillsage/interview/internal/utils"
)

// Client implements the generation gateway on top of the Gemini API. Prompt
// content lives in the embedded templates; every model reply is expected to
// be a single JSON object and anything else fails the call.
type Client struct {
	client  *genai.Client
	config  *Config
	prompts prompts.PromptProvider
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, err
	}

	return &Client{
		client:  client,
		config:  config,
		prompts: promptManager,
	}, nil
}

func (c *Client) GenerateQuestion(ctx context.Context, req llm.QuestionRequest) (*models.QuestionResult, error) {
	variant := "next"
	if req.Kind == models.KindCoding {
		variant = "coding"
	} else if len(req.History) == 0 {
		variant = "first"
	}

	prompt, err := c.prompts.BuildPrompt("question", variant, map[string]string{
		"Subject":       req.Subject,
		"Topic":         req.Topic,
		"ResumeContext": req.ResumeContext,
		"History":       transcriptJSON(req.History),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build question prompt: %w", err)
	}

	raw, err := c.generate(ctx, "generate_question", prompt)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Question string `json:"question"`
		Code     string `json:"code"`
	}
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Question) == "" {
		return nil, malformed("question is missing from model output", nil)
	}

	return &models.QuestionResult{
		Question: strings.TrimSpace(payload.Question),
		Code:     payload.Code,
	}, nil
}

func (c *Client) GradeAnswer(ctx context.Context, req llm.GradeRequest) (*models.GradeResult, error) {
	prompt, err := c.prompts.BuildPrompt("grade", string(req.Kind), map[string]string{
		"Question": req.Question,
		"Code":     req.Code,
		"Response": req.Response,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build grading prompt: %w", err)
	}

	raw, err := c.generate(ctx, "grade_answer", prompt)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Feedback string   `json:"feedback"`
		Marks    *float64 `json:"marks"`
	}
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Feedback) == "" {
		return nil, malformed("feedback is missing from model output", nil)
	}
	if payload.Marks == nil || *payload.Marks < 0 || *payload.Marks > 10 {
		return nil, malformed("marks are missing or outside the 0-10 range", nil)
	}

	return &models.GradeResult{
		Feedback: strings.TrimSpace(payload.Feedback),
		Marks:    int(math.Round(*payload.Marks)),
	}, nil
}

func (c *Client) RephraseQuestion(ctx context.Context, question string) (string, error) {
	prompt, err := c.prompts.BuildPrompt("rephrase", "default", map[string]string{
		"Question": question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build rephrase prompt: %w", err)
	}

	raw, err := c.generate(ctx, "rephrase_question", prompt)
	if err != nil {
		return "", err
	}

	var payload struct {
		Rephrased string `json:"rephrased_question"`
	}
	if err := decodePayload(raw, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Rephrased) == "" {
		return "", malformed("rephrased question is missing from model output", nil)
	}

	return strings.TrimSpace(payload.Rephrased), nil
}

func (c *Client) GenerateFinalFeedback(ctx context.Context, req llm.AssessmentRequest) (*models.FinalFeedback, error) {
	prompt, err := c.prompts.BuildPrompt("final_feedback", "default", map[string]string{
		"Subject":       req.Subject,
		"Topic":         req.Topic,
		"ResumeContext": req.ResumeContext,
		"History":       transcriptJSON(req.History),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build final feedback prompt: %w", err)
	}

	raw, err := c.generate(ctx, "final_feedback", prompt)
	if err != nil {
		return nil, err
	}

	var payload models.FinalFeedback
	if err := decodePayload(raw, &payload); err != nil {
		return nil, err
	}
	if payload.Strengths == "" || payload.Weaknesses == "" || payload.Summary == "" {
		return nil, malformed("final feedback is missing one of strengths, weaknesses or summary", nil)
	}

	return &payload, nil
}

// GenerateEvaluationMetrics is an acknowledged placeholder. The contract is
// kept so the engine can fold real scores once a scoring prompt ships; until
// then the engine skips the EvalMetrics update instead of folding zeros.
func (c *Client) GenerateEvaluationMetrics(ctx context.Context, req llm.AssessmentRequest) (*models.EvaluationScores, error) {
	return nil, &llm.ProviderError{
		Provider: "gemini",
		Code:     llm.ErrCodeNotImplemented,
		Message:  "evaluation metrics generation is not implemented yet",
	}
}

func (c *Client) ProviderName() string {
	return "gemini"
}

// generate runs one model call under the configured timeout and returns the
// raw text reply.
func (c *Client) generate(ctx context.Context, capability, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	startTime := time.Now()
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	metrics.ObserveGateway(capability, startTime, err)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &llm.ProviderError{
				Provider: "gemini",
				Code:     llm.ErrCodeTimeout,
				Message:  "Model call exceeded the configured timeout",
				Err:      err,
			}
		}
		return "", &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if result == nil {
		return "", malformed("no response generated", nil)
	}

	text, err := result.Text()
	if err != nil {
		return "", malformed("failed to extract response text", err)
	}
	if text == "" {
		return "", malformed("empty response generated", nil)
	}

	return text, nil
}

// decodePayload parses one JSON object out of a model reply, tolerating a
// surrounding markdown fence but nothing else.
func decodePayload(raw string, out interface{}) error {
	if err := json.Unmarshal([]byte(utils.StripFences(raw)), out); err != nil {
		return malformed("model output is not valid JSON", err)
	}
	return nil
}

func malformed(message string, err error) *llm.ProviderError {
	return &llm.ProviderError{
		Provider: "gemini",
		Code:     llm.ErrCodeMalformed,
		Message:  message,
		Err:      err,
	}
}

// transcriptJSON renders the exchange history as compact JSON for prompt
// interpolation, keeping only the fields the model needs.
func transcriptJSON(history []models.InterviewExchange) string {
	type turn struct {
		Question string `json:"question"`
		Code     string `json:"code,omitempty"`
		Response string `json:"response"`
		Marks    int    `json:"marks"`
	}

	turns := make([]turn, 0, len(history))
	for _, exchange := range history {
		turns = append(turns, turn{
			Question: exchange.Question,
			Code:     exchange.Code,
			Response: exchange.Response,
			Marks:    exchange.Marks,
		})
	}

	data, err := json.Marshal(turns)
	if err != nil {
		return "[]"
	}
	return string(data)
}
