package resume

import (
	"context"
	"testing"

	"skillsage/interview/internal/models"
	"skillsage/interview/internal/testhelpers"
)

func TestContextReturnsStoredResume(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	store := NewStore(db)

	seeded := &models.Resume{
		CandidateID: "candidate-1",
		Context:     "Five years of backend work with Go and Postgres.",
	}
	if err := db.Create(seeded).Error; err != nil {
		t.Fatalf("failed to seed resume: %v", err)
	}

	got := store.Context(context.Background(), "candidate-1")
	if got != seeded.Context {
		t.Fatalf("unexpected context: %q", got)
	}
}

func TestContextFallsBackToDefault(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	store := NewStore(db)

	if got := store.Context(context.Background(), "nobody"); got != DefaultContext {
		t.Fatalf("missing resume must yield default, got %q", got)
	}

	if err := db.Create(&models.Resume{CandidateID: "candidate-empty"}).Error; err != nil {
		t.Fatalf("failed to seed empty resume: %v", err)
	}
	if got := store.Context(context.Background(), "candidate-empty"); got != DefaultContext {
		t.Fatalf("empty resume must yield default, got %q", got)
	}
}
