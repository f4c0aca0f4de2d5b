package engine

import "errors"

// Kind classifies engine failures so the HTTP layer can map them to stable
// status codes without string matching.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindNotStarted       Kind = "not_started"
	KindAlreadySubmitted Kind = "already_submitted"
	KindIncomplete       Kind = "incomplete_interview"
	KindRephraseLimit    Kind = "rephrase_limit_reached"
	KindGateway          Kind = "gateway_failure"
	KindStorage          Kind = "storage_failure"
)

// Error is a tagged engine failure. State and validation errors surface
// before any write; gateway and storage errors abort the transaction they
// occurred in.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind, defaulting to storage for anything the
// engine did not classify itself.
func KindOf(err error) Kind {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind
	}
	return KindStorage
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func notStarted() *Error {
	return &Error{Kind: KindNotStarted, Message: "Please start the interview first."}
}

func alreadySubmitted() *Error {
	return &Error{Kind: KindAlreadySubmitted, Message: "Interview already submitted."}
}

func incomplete(message string) *Error {
	return &Error{Kind: KindIncomplete, Message: message}
}

func gatewayFailure(err error) *Error {
	return &Error{Kind: KindGateway, Message: "Generation gateway call failed", Err: err}
}

func storageFailure(err error) *Error {
	return &Error{Kind: KindStorage, Message: "Storage operation failed", Err: err}
}
