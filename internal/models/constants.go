package models

// Interview template statuses. The engine only acts on active interviews.
const (
	InterviewStatusScheduled = "scheduled"
	InterviewStatusActive    = "active"
	InterviewStatusPaused    = "paused"
)

// Instance statuses. Submitted is terminal.
const (
	InstanceStatusNotSubmitted = "not_submitted"
	InstanceStatusSubmitted    = "submitted"
)

// Session states returned to the caller.
const (
	SessionIncomplete = "incomplete"
	SessionComplete   = "complete"
	SessionSubmitted  = "submitted"
)

// ExchangeKind tags a question slot as conceptual or coding. The kind is
// fixed by the slot's position: the first NoOfQuestions slots are conceptual,
// the rest are coding.
type ExchangeKind string

const (
	KindConceptual ExchangeKind = "conceptual"
	KindCoding     ExchangeKind = "coding"
)

// KindAt returns the kind of the exchange at the given zero-based slot index.
func KindAt(index, noOfQuestions int) ExchangeKind {
	if index < noOfQuestions {
		return KindConceptual
	}
	return KindCoding
}
