package jobs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"skillsage/interview/internal/transcripts"
)

// TranscriptExporterJob periodically writes submitted interview transcripts
// to JSONL files for offline analysis and grader fine-tuning.
type TranscriptExporterJob struct {
	manager *transcripts.Manager
	config  *ExporterConfig
	cron    *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
}

func NewTranscriptExporterJob(manager *transcripts.Manager, config *ExporterConfig) *TranscriptExporterJob {
	return &TranscriptExporterJob{
		manager: manager,
		config:  config,
		cron:    cron.New(),
	}
}

// Start begins the scheduled export job
func (tej *TranscriptExporterJob) Start() error {
	if !tej.config.ExportEnabled {
		log.Println("Transcript export is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting transcript exporter with schedule: %s", tej.config.Schedule)

	_, err := tej.cron.AddFunc(tej.config.Schedule, func() {
		if err := tej.RunExport(); err != nil {
			log.Printf("Export job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	tej.cron.Start()
	log.Println("Transcript exporter started successfully")

	return nil
}

// Stop stops the scheduled export job
func (tej *TranscriptExporterJob) Stop() {
	if tej.cron != nil {
		tej.cron.Stop()
		log.Println("Transcript exporter stopped")
	}
}

// RunExport performs a single export run
func (tej *TranscriptExporterJob) RunExport() error {
	log.Println("Starting transcript export job...")

	instances, err := tej.manager.GetUnexported(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported instances: %w", err)
	}

	if len(instances) == 0 {
		log.Println("No unexported interviews found")
		return nil
	}

	log.Printf("Found %d unexported interviews", len(instances))

	jsonlData, err := tej.manager.ExportToJSONL(instances)
	if err != nil {
		return fmt.Errorf("failed to export to JSONL: %w", err)
	}

	instanceIDs := make([]uint, len(instances))
	for i, instance := range instances {
		instanceIDs[i] = instance.ID
	}

	if len(jsonlData) == 0 {
		log.Println("No answered exchanges to export, skipping file creation")
		return tej.manager.MarkExported(instanceIDs)
	}

	if err := os.MkdirAll(tej.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	// the uuid suffix keeps a manual run from clobbering a scheduled one
	// started in the same second
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("transcript_export_%s_%s.jsonl", timestamp, uuid.NewString()[:8])
	path := filepath.Join(tej.config.ExportDir, filename)

	if err := os.WriteFile(path, jsonlData, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	log.Printf("Exported %d interviews to %s", len(instances), path)

	if err := tej.manager.MarkExported(instanceIDs); err != nil {
		return fmt.Errorf("failed to mark as exported: %w", err)
	}

	return nil
}

// RunManual runs an export manually (for testing or on-demand exports)
func (tej *TranscriptExporterJob) RunManual() error {
	return tej.RunExport()
}
