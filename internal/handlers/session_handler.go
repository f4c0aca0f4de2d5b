package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"skillsage/interview/internal/engine"
	"skillsage/interview/internal/middleware"
	"skillsage/interview/internal/models"
	"skillsage/interview/internal/utils"
)

// SessionHandler translates the HTTP surface onto the four engine operations
// plus the read-only review and metrics endpoints.
type SessionHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewSessionHandler(eng *engine.Engine, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		engine: eng,
		logger: logger,
	}
}

func (h *SessionHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewIDParam(w, r)
	if !ok {
		return
	}
	candidateID := middleware.CandidateID(r)

	snap, err := h.engine.Start(r.Context(), interviewID, candidateID)
	if err != nil {
		h.writeEngineError(w, "start", err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SessionResponse{
		Status:    snap.State,
		Message:   snap.Message,
		Exchanges: snap.Exchanges,
	})
}

func (h *SessionHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewIDParam(w, r)
	if !ok {
		return
	}
	candidateID := middleware.CandidateID(r)
	req := middleware.GetValidatedRequest[*models.AdvanceRequest](r)

	snap, err := h.engine.Advance(r.Context(), interviewID, candidateID, req.Response)
	if err != nil {
		h.writeEngineError(w, "advance", err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SessionResponse{
		Status:    snap.State,
		Message:   snap.Message,
		Exchanges: snap.Exchanges,
	})
}

func (h *SessionHandler) ReframeHandler(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewIDParam(w, r)
	if !ok {
		return
	}
	candidateID := middleware.CandidateID(r)

	snap, err := h.engine.Reframe(r.Context(), interviewID, candidateID)
	if err != nil {
		h.writeEngineError(w, "reframe", err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SessionResponse{
		Status:    snap.State,
		Message:   snap.Message,
		Exchanges: snap.Exchanges,
	})
}

func (h *SessionHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewIDParam(w, r)
	if !ok {
		return
	}
	candidateID := middleware.CandidateID(r)

	snap, err := h.engine.Submit(r.Context(), interviewID, candidateID)
	if err != nil {
		h.writeEngineError(w, "submit", err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SubmitResponse{
		Status:    snap.State,
		Instance:  snap.Instance,
		Exchanges: snap.Exchanges,
	})
}

func (h *SessionHandler) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	interviewID, ok := interviewIDParam(w, r)
	if !ok {
		return
	}
	candidateID := middleware.CandidateID(r)

	snap, err := h.engine.Review(r.Context(), interviewID, candidateID)
	if err != nil {
		h.writeEngineError(w, "review", err)
		return
	}

	utils.JSON(w, http.StatusOK, models.SubmitResponse{
		Status:    snap.State,
		Instance:  snap.Instance,
		Exchanges: snap.Exchanges,
	})
}

func (h *SessionHandler) EvalMetricsHandler(w http.ResponseWriter, r *http.Request) {
	candidateID := middleware.CandidateID(r)

	m, err := h.engine.Metrics(r.Context(), candidateID)
	if err != nil {
		h.writeEngineError(w, "eval_metrics", err)
		return
	}

	utils.JSON(w, http.StatusOK, m)
}

// interviewIDParam parses the interview ID path parameter, writing the error
// response itself when the value is unusable.
func interviewIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "interviewID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{
			Code:    "invalid_interview_id",
			Message: "Interview id must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (h *SessionHandler) writeEngineError(w http.ResponseWriter, operation string, err error) {
	kind := engine.KindOf(err)

	message := err.Error()
	var engineErr *engine.Error
	if errors.As(err, &engineErr) {
		// keep wrapped internals out of client responses
		message = engineErr.Message
	}

	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("engine operation failed",
			zap.String("operation", operation),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}

	utils.JSON(w, status, models.ErrorResponse{
		Code:    string(kind),
		Message: message,
	})
}

func statusForKind(kind engine.Kind) int {
	switch kind {
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindNotStarted, engine.KindAlreadySubmitted, engine.KindIncomplete, engine.KindRephraseLimit:
		return http.StatusBadRequest
	case engine.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
