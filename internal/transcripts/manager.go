package transcripts

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/gorm"

	"skillsage/interview/internal/models"
)

// Manager reads submitted interview transcripts and turns them into
// fine-tuning data for the grading model.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// TrainingDataPoint is a single training example in the JSONL format the
// tuning pipeline consumes.
type TrainingDataPoint struct {
	Contents []TrainingContent `json:"contents"`
}

type TrainingContent struct {
	Role  string         `json:"role"` // "user" or "model"
	Parts []TrainingPart `json:"parts"`
}

type TrainingPart struct {
	Text string `json:"text"`
}

// GetUnexported retrieves submitted instances that have not been exported yet.
func (m *Manager) GetUnexported(limit int) ([]models.InterviewInstance, error) {
	var instances []models.InterviewInstance

	query := m.db.
		Where("status = ? AND exported = ?", models.InstanceStatusSubmitted, false).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&instances).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported instances: %w", err)
	}

	return instances, nil
}

// ExchangesFor loads the ordered transcript of one instance.
func (m *Manager) ExchangesFor(instanceID uint) ([]models.InterviewExchange, error) {
	var exchanges []models.InterviewExchange
	err := m.db.Where("instance_id = ?", instanceID).Order("id ASC").Find(&exchanges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load exchanges for instance %d: %w", instanceID, err)
	}
	return exchanges, nil
}

// ExportToJSONL renders the answered exchanges of the given instances as
// JSONL training examples: the question/answer pair as the user turn, the
// grader's feedback as the model turn. Unanswered slots are skipped.
func (m *Manager) ExportToJSONL(instances []models.InterviewInstance) ([]byte, error) {
	var jsonlLines [][]byte

	for _, instance := range instances {
		exchanges, err := m.ExchangesFor(instance.ID)
		if err != nil {
			return nil, err
		}

		for _, exchange := range exchanges {
			if !exchange.Answered() || exchange.Feedback == "" {
				continue
			}

			dataPoint := TrainingDataPoint{
				Contents: []TrainingContent{
					{
						Role: "user",
						Parts: []TrainingPart{
							{Text: "Question: " + exchange.Question + "\nAnswer: " + exchange.Response},
						},
					},
					{
						Role: "model",
						Parts: []TrainingPart{
							{Text: exchange.Feedback},
						},
					},
				},
			}

			jsonBytes, err := json.Marshal(dataPoint)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal training data: %w", err)
			}
			jsonlLines = append(jsonlLines, jsonBytes)
		}
	}

	jsonlData := []byte{}
	for i, line := range jsonlLines {
		jsonlData = append(jsonlData, line...)
		if i < len(jsonlLines)-1 {
			jsonlData = append(jsonlData, '\n')
		}
	}

	log.Printf("Exported %d training examples from %d submitted interviews", len(jsonlLines), len(instances))

	return jsonlData, nil
}

// MarkExported flags instances as exported so the next run skips them.
func (m *Manager) MarkExported(instanceIDs []uint) error {
	result := m.db.Model(&models.InterviewInstance{}).
		Where("id IN ?", instanceIDs).
		Update("exported", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark instances as exported: %w", result.Error)
	}

	log.Printf("Marked %d interview instances as exported", result.RowsAffected)
	return nil
}
