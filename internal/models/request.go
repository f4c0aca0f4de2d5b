package models

import "strings"

// maximum accepted answer length, measured in bytes
const maxResponseLength = 20000

// AdvanceRequest carries the candidate's answer to the open question.
type AdvanceRequest struct {
	Response string `json:"response"`
}

// implements the Validator interface used by the validation middleware.
// An empty response is rejected because an empty Response column is what
// marks the open slot; candidates skip a question by saying so.
func (r *AdvanceRequest) Validate() error {
	if strings.TrimSpace(r.Response) == "" {
		return &ErrorResponse{
			Code:    "missing_response",
			Message: "Response field is required. Answer the question or state that you want to skip it.",
		}
	}

	if len(r.Response) > maxResponseLength {
		return &ErrorResponse{
			Code:    "response_too_long",
			Message: "Response exceeds the maximum accepted length",
		}
	}

	return nil
}
