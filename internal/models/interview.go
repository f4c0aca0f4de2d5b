package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

// Interview is the reusable template a candidate attempts: subject, topic
// and how many conceptual/coding questions the session runs through.
// Templates are managed by the admin service; the session engine only reads
// them and only acts on active ones.
type Interview struct {
	gorm.Model
	Name                string `json:"name"`
	Subject             string `gorm:"not null" json:"subject"`
	Topic               string `gorm:"not null" json:"topic"`
	NoOfQuestions       int    `gorm:"not null;default:2" json:"no_of_questions"`
	NoOfCodingQuestions int    `gorm:"not null;default:2" json:"no_of_coding_questions"`
	Status              string `gorm:"not null;default:'scheduled'" json:"status"`
}

// TotalQuestions is the number of exchanges a completed attempt must hold.
func (i *Interview) TotalQuestions() int {
	return i.NoOfQuestions + i.NoOfCodingQuestions
}

// InterviewInstance is one candidate's attempt at one Interview. At most one
// instance exists per (interview, candidate) pair. Once Status is submitted
// the row is terminal and no engine operation mutates it again.
type InterviewInstance struct {
	gorm.Model
	InterviewID   uint          `gorm:"not null;uniqueIndex:idx_interview_candidate" json:"interview_id"`
	CandidateID   string        `gorm:"not null;uniqueIndex:idx_interview_candidate" json:"candidate_id"`
	Status        string        `gorm:"not null" json:"status"`
	Marks         int           `gorm:"not null;default:0" json:"marks"`
	Feedback      FinalFeedback `gorm:"type:jsonb" json:"feedback"`
	RephrasesLeft int           `gorm:"not null;default:0" json:"rephrases_left"`
	Exported      bool          `gorm:"not null;default:false;index" json:"exported"`
}

// InterviewExchange is one question slot within an instance, strictly ordered
// by creation. Response stays empty until the candidate answers; the single
// unanswered exchange is always the most recent one.
type InterviewExchange struct {
	gorm.Model
	InstanceID uint   `gorm:"not null;index" json:"instance_id"`
	Question   string `gorm:"type:text;not null" json:"question"`
	Code       string `gorm:"type:text" json:"code"`
	Response   string `gorm:"type:text" json:"response"`
	Feedback   string `gorm:"type:text" json:"feedback"`
	Marks      int    `gorm:"not null;default:0" json:"marks"`
}

// Answered reports whether the candidate has responded to this exchange.
func (e *InterviewExchange) Answered() bool {
	return e.Response != ""
}

// FinalFeedback is the structured end-of-interview assessment stored on the
// instance row as a JSON column.
type FinalFeedback struct {
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
	Summary    string `json:"summary"`
}

func (f FinalFeedback) Value() (driver.Value, error) {
	return json.Marshal(f)
}

func (f *FinalFeedback) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*f = FinalFeedback{}
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported feedback column type %T", value)
	}
}

// EvalMetrics holds a candidate's rolling skill averages across all submitted
// interviews. Count is the number of interviews folded in so far.
type EvalMetrics struct {
	gorm.Model
	CandidateID    string  `gorm:"uniqueIndex;not null" json:"candidate_id"`
	ProblemSolving float64 `gorm:"not null;default:0" json:"problem_solving"`
	CodeQuality    float64 `gorm:"not null;default:0" json:"code_quality"`
	Debugging      float64 `gorm:"not null;default:0" json:"debugging"`
	Count          int     `gorm:"not null;default:0" json:"count"`
}

// Fold merges one interview's evaluation scores into the rolling means using
// the incremental-mean update, so the stored value always equals the
// arithmetic mean of every sample folded so far.
func (m *EvalMetrics) Fold(scores EvaluationScores) {
	m.Count++
	n := float64(m.Count)
	m.ProblemSolving = (m.ProblemSolving*(n-1) + scores.ProblemSolving) / n
	m.CodeQuality = (m.CodeQuality*(n-1) + scores.CodeQuality) / n
	m.Debugging = (m.Debugging*(n-1) + scores.Debugging) / n
}

// Resume stores the summarized resume text used as prompt context. Upload and
// summarization are owned by the admin service.
type Resume struct {
	gorm.Model
	CandidateID string `gorm:"uniqueIndex;not null" json:"candidate_id"`
	Context     string `gorm:"type:text" json:"context"`
}
