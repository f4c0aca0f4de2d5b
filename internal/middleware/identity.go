package middleware

import (
	"context"
	"net/http"

	"skillsage/interview/internal/models"
	"skillsage/interview/internal/utils"
)

const candidateIDKey contextKey = "candidate_id"

// CandidateHeader carries the candidate identity resolved by the auth
// gateway in front of this service. Session resolution itself is not this
// service's job; an absent header means the request never went through the
// gateway.
const CandidateHeader = "X-Candidate-ID"

// RequireCandidate rejects requests without a resolved candidate identity
// and stores the ID in the request context for handlers.
func RequireCandidate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		candidateID := r.Header.Get(CandidateHeader)
		if candidateID == "" {
			utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
				Code:    "missing_candidate",
				Message: "Candidate identity was not resolved for this request",
			})
			return
		}

		ctx := context.WithValue(r.Context(), candidateIDKey, candidateID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CandidateID retrieves the resolved candidate identity from context.
func CandidateID(r *http.Request) string {
	if id, ok := r.Context().Value(candidateIDKey).(string); ok {
		return id
	}
	return ""
}
