package engine

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skillsage/interview/internal/llm"
	"skillsage/interview/internal/metrics"
	"skillsage/interview/internal/models"
	"skillsage/interview/internal/resume"
)

// Engine drives one candidate's attempt at one interview template through
// its lifecycle: start, advance one question at a time, rephrase the open
// question, submit for final scoring. The engine keeps no state between
// calls; every operation is a single transaction against the store with the
// instance row locked for its duration, so concurrent calls for the same
// attempt serialize instead of double-grading or double-creating slots.
type Engine struct {
	db             *gorm.DB
	gateway        llm.Gateway
	resumes        resume.Provider
	logger         *zap.Logger
	rephraseBudget int
}

func New(db *gorm.DB, gateway llm.Gateway, resumes resume.Provider, logger *zap.Logger, rephraseBudget int) *Engine {
	return &Engine{
		db:             db,
		gateway:        gateway,
		resumes:        resumes,
		logger:         logger,
		rephraseBudget: rephraseBudget,
	}
}

// Snapshot is the attempt state returned to the caller after an operation.
type Snapshot struct {
	State     string
	Message   string
	Instance  *models.InterviewInstance
	Exchanges []models.InterviewExchange
}

// Start creates the attempt and its first question, or resumes an existing
// unsubmitted attempt without mutating anything.
func (e *Engine) Start(ctx context.Context, interviewID uint, candidateID string) (snap *Snapshot, err error) {
	defer func() { metrics.RecordOperation("start", err) }()

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interview, terr := activeInterview(tx, interviewID)
		if terr != nil {
			return terr
		}

		var instance models.InterviewInstance
		ferr := lockForUpdate(tx).
			Where("interview_id = ? AND candidate_id = ?", interview.ID, candidateID).
			First(&instance).Error
		if ferr == nil {
			if instance.Status == models.InstanceStatusSubmitted {
				return alreadySubmitted()
			}
			exchanges, lerr := loadExchanges(tx, instance.ID)
			if lerr != nil {
				return lerr
			}
			state := models.SessionIncomplete
			if attemptComplete(interview, exchanges) {
				state = models.SessionComplete
			}
			snap = &Snapshot{State: state, Exchanges: exchanges}
			return nil
		}
		if !errors.Is(ferr, gorm.ErrRecordNotFound) {
			return storageFailure(ferr)
		}

		instance = models.InterviewInstance{
			InterviewID:   interview.ID,
			CandidateID:   candidateID,
			Status:        models.InstanceStatusNotSubmitted,
			RephrasesLeft: e.rephraseBudget,
		}
		// The unique (interview, candidate) index makes the loser of two
		// concurrent first starts fail here and roll back whole.
		if cerr := tx.Create(&instance).Error; cerr != nil {
			return storageFailure(cerr)
		}

		if interview.TotalQuestions() == 0 {
			snap = &Snapshot{State: models.SessionComplete, Exchanges: []models.InterviewExchange{}}
			return nil
		}

		question, qerr := e.gateway.GenerateQuestion(ctx, llm.QuestionRequest{
			Kind:          models.KindAt(0, interview.NoOfQuestions),
			Subject:       interview.Subject,
			Topic:         interview.Topic,
			ResumeContext: e.resumes.Context(ctx, candidateID),
		})
		if qerr != nil {
			return gatewayFailure(qerr)
		}

		exchange := models.InterviewExchange{
			InstanceID: instance.ID,
			Question:   question.Question,
			Code:       question.Code,
		}
		if cerr := tx.Create(&exchange).Error; cerr != nil {
			return storageFailure(cerr)
		}

		snap = &Snapshot{State: models.SessionIncomplete, Exchanges: []models.InterviewExchange{exchange}}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Advance grades the open question with the candidate's response and, unless
// that closed out the attempt, issues the next question. Both writes happen
// in the same transaction: the caller never observes a graded answer without
// its follow-up question.
func (e *Engine) Advance(ctx context.Context, interviewID uint, candidateID, response string) (snap *Snapshot, err error) {
	defer func() { metrics.RecordOperation("advance", err) }()

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interview, terr := activeInterview(tx, interviewID)
		if terr != nil {
			return terr
		}
		instance, ierr := lockedInstance(tx, interview.ID, candidateID)
		if ierr != nil {
			return ierr
		}
		if instance.Status == models.InstanceStatusSubmitted {
			return alreadySubmitted()
		}

		exchanges, lerr := loadExchanges(tx, instance.ID)
		if lerr != nil {
			return lerr
		}
		total := interview.TotalQuestions()
		if len(exchanges) == 0 {
			// start always seeds slot 0; an empty list means the attempt is corrupt
			return storageFailure(errors.New("instance has no exchanges"))
		}

		last := &exchanges[len(exchanges)-1]
		if len(exchanges) >= total && last.Answered() {
			snap = &Snapshot{
				State:     models.SessionComplete,
				Message:   "You have already answered all the questions.",
				Exchanges: exchanges,
			}
			return nil
		}

		if !last.Answered() {
			kind := models.KindAt(len(exchanges)-1, interview.NoOfQuestions)
			grade, gerr := e.gateway.GradeAnswer(ctx, llm.GradeRequest{
				Kind:     kind,
				Question: last.Question,
				Code:     last.Code,
				Response: response,
			})
			if gerr != nil {
				return gatewayFailure(gerr)
			}

			last.Response = response
			last.Feedback = grade.Feedback
			last.Marks = grade.Marks
			uerr := tx.Model(&models.InterviewExchange{}).Where("id = ?", last.ID).
				Updates(map[string]interface{}{
					"response": last.Response,
					"feedback": last.Feedback,
					"marks":    last.Marks,
				}).Error
			if uerr != nil {
				return storageFailure(uerr)
			}

			if len(exchanges) == total {
				snap = &Snapshot{State: models.SessionComplete, Exchanges: exchanges}
				return nil
			}
		}
		// An already-answered open slot falls through here without
		// re-grading, so a retried advance cannot grade the same
		// exchange twice.

		kind := models.KindAt(len(exchanges), interview.NoOfQuestions)
		question, qerr := e.gateway.GenerateQuestion(ctx, llm.QuestionRequest{
			Kind:          kind,
			Subject:       interview.Subject,
			Topic:         interview.Topic,
			ResumeContext: e.resumes.Context(ctx, candidateID),
			History:       exchanges,
		})
		if qerr != nil {
			return gatewayFailure(qerr)
		}

		next := models.InterviewExchange{
			InstanceID: instance.ID,
			Question:   question.Question,
			Code:       question.Code,
		}
		if cerr := tx.Create(&next).Error; cerr != nil {
			return storageFailure(cerr)
		}

		snap = &Snapshot{State: models.SessionIncomplete, Exchanges: append(exchanges, next)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Reframe rewrites the open question in place. The rephrase budget lives on
// the instance row and is checked and decremented inside the transaction, so
// the limit holds regardless of what the client counts.
func (e *Engine) Reframe(ctx context.Context, interviewID uint, candidateID string) (snap *Snapshot, err error) {
	defer func() { metrics.RecordOperation("reframe", err) }()

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interview, terr := activeInterview(tx, interviewID)
		if terr != nil {
			return terr
		}
		instance, ierr := lockedInstance(tx, interview.ID, candidateID)
		if ierr != nil {
			return ierr
		}
		if instance.Status == models.InstanceStatusSubmitted {
			return alreadySubmitted()
		}

		exchanges, lerr := loadExchanges(tx, instance.ID)
		if lerr != nil {
			return lerr
		}
		if len(exchanges) == 0 {
			return storageFailure(errors.New("instance has no exchanges"))
		}

		last := &exchanges[len(exchanges)-1]
		if len(exchanges) == interview.TotalQuestions() && last.Answered() {
			snap = &Snapshot{
				State:     models.SessionComplete,
				Message:   "You have already answered all the questions.",
				Exchanges: exchanges,
			}
			return nil
		}

		if instance.RephrasesLeft <= 0 {
			return &Error{Kind: KindRephraseLimit, Message: "No rephrases left for this interview."}
		}

		rephrased, rerr := e.gateway.RephraseQuestion(ctx, last.Question)
		if rerr != nil {
			return gatewayFailure(rerr)
		}

		uerr := tx.Model(&models.InterviewExchange{}).Where("id = ?", last.ID).
			Update("question", rephrased).Error
		if uerr != nil {
			return storageFailure(uerr)
		}
		uerr = tx.Model(&models.InterviewInstance{}).Where("id = ?", instance.ID).
			Update("rephrases_left", instance.RephrasesLeft-1).Error
		if uerr != nil {
			return storageFailure(uerr)
		}

		last.Question = rephrased
		snap = &Snapshot{
			State:     models.SessionIncomplete,
			Message:   "The last question has been reframed.",
			Exchanges: exchanges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Submit finalizes a complete attempt: aggregate marks, final narrative
// feedback, and the candidate's rolling skill metrics, all in one
// transaction so a failed step leaves no partial result behind.
func (e *Engine) Submit(ctx context.Context, interviewID uint, candidateID string) (snap *Snapshot, err error) {
	defer func() { metrics.RecordOperation("submit", err) }()

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		interview, terr := activeInterview(tx, interviewID)
		if terr != nil {
			return terr
		}
		instance, ierr := lockedInstance(tx, interview.ID, candidateID)
		if ierr != nil {
			return ierr
		}
		if instance.Status == models.InstanceStatusSubmitted {
			return alreadySubmitted()
		}

		exchanges, lerr := loadExchanges(tx, instance.ID)
		if lerr != nil {
			return lerr
		}
		if !attemptComplete(interview, exchanges) {
			return incomplete("You have not answered all the questions yet. Please answer or skip the remaining question.")
		}

		total := interview.TotalQuestions()
		sum := 0
		for _, exchange := range exchanges {
			sum += exchange.Marks
		}
		average := 0
		if total > 0 {
			average = int(math.Round(float64(sum) / float64(total)))
		}

		assessment := llm.AssessmentRequest{
			Subject:       interview.Subject,
			Topic:         interview.Topic,
			ResumeContext: e.resumes.Context(ctx, candidateID),
			History:       exchanges,
		}

		feedback, ferr := e.gateway.GenerateFinalFeedback(ctx, assessment)
		if ferr != nil {
			return gatewayFailure(ferr)
		}

		scores, serr := e.gateway.GenerateEvaluationMetrics(ctx, assessment)
		switch {
		case serr == nil:
			if merr := foldMetrics(tx, candidateID, *scores); merr != nil {
				return merr
			}
		case llm.IsNotImplemented(serr):
			// acknowledged placeholder: skip the fold rather than
			// polluting the rolling means with zeros
			e.logger.Warn("evaluation metrics generator not implemented, skipping skill metrics update",
				zap.String("candidate_id", candidateID))
		default:
			return gatewayFailure(serr)
		}

		uerr := tx.Model(&models.InterviewInstance{}).Where("id = ?", instance.ID).
			Updates(map[string]interface{}{
				"status":   models.InstanceStatusSubmitted,
				"marks":    average,
				"feedback": *feedback,
			}).Error
		if uerr != nil {
			return storageFailure(uerr)
		}

		instance.Status = models.InstanceStatusSubmitted
		instance.Marks = average
		instance.Feedback = *feedback
		snap = &Snapshot{State: models.SessionSubmitted, Instance: instance, Exchanges: exchanges}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Review returns a submitted attempt with its final feedback and transcript.
// Read-only; works even after the template itself was paused.
func (e *Engine) Review(ctx context.Context, interviewID uint, candidateID string) (*Snapshot, error) {
	var instance models.InterviewInstance
	err := e.db.WithContext(ctx).
		Where("interview_id = ? AND candidate_id = ?", interviewID, candidateID).
		First(&instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notStarted()
	}
	if err != nil {
		return nil, storageFailure(err)
	}
	if instance.Status != models.InstanceStatusSubmitted {
		return nil, incomplete("Interview has not been submitted yet.")
	}

	exchanges, lerr := loadExchanges(e.db.WithContext(ctx), instance.ID)
	if lerr != nil {
		return nil, lerr
	}
	return &Snapshot{State: models.SessionSubmitted, Instance: &instance, Exchanges: exchanges}, nil
}

// Metrics returns the candidate's rolling skill averages, zero-valued when
// nothing has been folded in yet.
func (e *Engine) Metrics(ctx context.Context, candidateID string) (*models.EvalMetrics, error) {
	var m models.EvalMetrics
	err := e.db.WithContext(ctx).Where("candidate_id = ?", candidateID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.EvalMetrics{CandidateID: candidateID}, nil
	}
	if err != nil {
		return nil, storageFailure(err)
	}
	return &m, nil
}

func activeInterview(tx *gorm.DB, interviewID uint) (*models.Interview, error) {
	var interview models.Interview
	err := tx.Where("id = ? AND status = ?", interviewID, models.InterviewStatusActive).
		First(&interview).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Interview not found or is not active.")
	}
	if err != nil {
		return nil, storageFailure(err)
	}
	return &interview, nil
}

func lockedInstance(tx *gorm.DB, interviewID uint, candidateID string) (*models.InterviewInstance, error) {
	var instance models.InterviewInstance
	err := lockForUpdate(tx).
		Where("interview_id = ? AND candidate_id = ?", interviewID, candidateID).
		First(&instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notStarted()
	}
	if err != nil {
		return nil, storageFailure(err)
	}
	return &instance, nil
}

func loadExchanges(tx *gorm.DB, instanceID uint) ([]models.InterviewExchange, error) {
	var exchanges []models.InterviewExchange
	err := tx.Where("instance_id = ?", instanceID).Order("id ASC").Find(&exchanges).Error
	if err != nil {
		return nil, storageFailure(err)
	}
	return exchanges, nil
}

// lockForUpdate takes a row lock on databases that support it. SQLite (used
// in tests) rejects FOR UPDATE and serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func attemptComplete(interview *models.Interview, exchanges []models.InterviewExchange) bool {
	total := interview.TotalQuestions()
	if len(exchanges) != total {
		return false
	}
	return total == 0 || exchanges[total-1].Answered()
}

func foldMetrics(tx *gorm.DB, candidateID string, scores models.EvaluationScores) error {
	var m models.EvalMetrics
	err := lockForUpdate(tx).Where("candidate_id = ?", candidateID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = models.EvalMetrics{CandidateID: candidateID}
		m.Fold(scores)
		if cerr := tx.Create(&m).Error; cerr != nil {
			return storageFailure(cerr)
		}
		return nil
	}
	if err != nil {
		return storageFailure(err)
	}

	m.Fold(scores)
	uerr := tx.Model(&models.EvalMetrics{}).Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"problem_solving": m.ProblemSolving,
			"code_quality":    m.CodeQuality,
			"debugging":       m.Debugging,
			"count":           m.Count,
		}).Error
	if uerr != nil {
		return storageFailure(uerr)
	}
	return nil
}
