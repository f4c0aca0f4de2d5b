package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skillsage/interview/internal/models"
	"skillsage/interview/internal/testhelpers"
	"skillsage/interview/internal/transcripts"
)

func TestRunExportWritesJSONL(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	exportDir := t.TempDir()

	instance := &models.InterviewInstance{
		InterviewID: 1,
		CandidateID: "candidate-1",
		Status:      models.InstanceStatusSubmitted,
	}
	if err := db.Create(instance).Error; err != nil {
		t.Fatalf("failed to seed instance: %v", err)
	}
	exchange := &models.InterviewExchange{
		InstanceID: instance.ID,
		Question:   "What is a deadlock?",
		Response:   "Two goroutines waiting on each other.",
		Feedback:   "Good definition.",
		Marks:      8,
	}
	if err := db.Create(exchange).Error; err != nil {
		t.Fatalf("failed to seed exchange: %v", err)
	}

	job := NewTranscriptExporterJob(transcripts.NewManager(db), &ExporterConfig{
		Schedule:      "0 2 * * *",
		ExportDir:     exportDir,
		ExportEnabled: true,
	})

	if err := job.RunExport(); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	entries, err := os.ReadDir(exportDir)
	if err != nil {
		t.Fatalf("failed to read export dir: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "transcript_export_") {
		t.Fatalf("expected one export file, got %v", entries)
	}

	data, err := os.ReadFile(filepath.Join(exportDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}
	if !strings.Contains(string(data), "What is a deadlock?") {
		t.Fatalf("export missing transcript content: %s", data)
	}

	var reloaded models.InterviewInstance
	if err := db.First(&reloaded, instance.ID).Error; err != nil {
		t.Fatalf("failed to reload instance: %v", err)
	}
	if !reloaded.Exported {
		t.Fatal("instance not marked exported")
	}
}

func TestRunExportNoData(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	exportDir := t.TempDir()

	job := NewTranscriptExporterJob(transcripts.NewManager(db), &ExporterConfig{
		Schedule:      "0 2 * * *",
		ExportDir:     exportDir,
		ExportEnabled: true,
	})

	if err := job.RunExport(); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	entries, err := os.ReadDir(exportDir)
	if err != nil {
		t.Fatalf("failed to read export dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no export files, got %v", entries)
	}
}

func TestRunExportMarksEmptyTranscripts(t *testing.T) {
	// submitted instance with no answered exchanges still gets flagged so
	// the next run does not pick it up again
	db := testhelpers.SetupTestDB(t)

	instance := &models.InterviewInstance{
		InterviewID: 1,
		CandidateID: "candidate-1",
		Status:      models.InstanceStatusSubmitted,
	}
	if err := db.Create(instance).Error; err != nil {
		t.Fatalf("failed to seed instance: %v", err)
	}

	job := NewTranscriptExporterJob(transcripts.NewManager(db), &ExporterConfig{
		Schedule:      "0 2 * * *",
		ExportDir:     t.TempDir(),
		ExportEnabled: true,
	})

	if err := job.RunExport(); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	var reloaded models.InterviewInstance
	if err := db.First(&reloaded, instance.ID).Error; err != nil {
		t.Fatalf("failed to reload instance: %v", err)
	}
	if !reloaded.Exported {
		t.Fatal("empty transcript must still be marked exported")
	}
}

func TestStartDisabled(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	job := NewTranscriptExporterJob(transcripts.NewManager(db), &ExporterConfig{
		Schedule:      "0 2 * * *",
		ExportEnabled: false,
	})

	if err := job.Start(); err != nil {
		t.Fatalf("disabled start must be a no-op, got %v", err)
	}
	job.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	job := NewTranscriptExporterJob(transcripts.NewManager(db), &ExporterConfig{
		Schedule:      "not a schedule",
		ExportEnabled: true,
	})

	if err := job.Start(); err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
	job.Stop()
}
