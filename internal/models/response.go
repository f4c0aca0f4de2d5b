package models

// SessionResponse is returned by start, next and reframe: the session state
// plus the full ordered exchange list.
type SessionResponse struct {
	Status    string              `json:"status"`
	Message   string              `json:"message,omitempty"`
	Exchanges []InterviewExchange `json:"interview_exchanges"`
}

// SubmitResponse additionally carries the finalized instance with its
// aggregate marks and structured feedback.
type SubmitResponse struct {
	Status    string              `json:"status"`
	Instance  *InterviewInstance  `json:"interview_instance"`
	Exchanges []InterviewExchange `json:"interview_exchanges"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}
