package resume

import (
	"context"

	"gorm.io/gorm"

	"skillsage/interview/internal/models"
)

// DefaultContext stands in for candidates who never uploaded a resume.
const DefaultContext = "I am a student studying in a college with little to no experience."

// Provider supplies free-text candidate background for prompt construction.
type Provider interface {
	Context(ctx context.Context, candidateID string) string
}

// Store reads summarized resume text from the relational store. Uploading and
// summarizing resumes is owned by the admin service; this side only reads.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Context returns the candidate's resume summary, or the generic default when
// no resume exists. Lookup failures also fall back to the default: a missing
// resume must never block an interview.
func (s *Store) Context(ctx context.Context, candidateID string) string {
	var r models.Resume
	err := s.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&r).Error
	if err != nil || r.Context == "" {
		return DefaultContext
	}
	return r.Context
}
