package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/internal/models"
	"github.com/abrezinsky/hoopsboard/internal/questions"
	"github.com/abrezinsky/hoopsboard/internal/repository"
)

// MaxBatchSize caps how many drafts one batch may hold
const MaxBatchSize = 25

// QuestionCreator sends one authored question upstream
type QuestionCreator interface {
	CreateQuestion(ctx context.Context, payload interface{}) (string, error)
}

// SubmissionObserver is told the status of every submitted draft
type SubmissionObserver interface {
	SubmissionRecorded(status string)
}

// Preview is a draft as it would be submitted
type Preview struct {
	Index   int                    `json:"index"`
	Kind    questions.Kind         `json:"kind"`
	Summary string                 `json:"summary"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// BatchResult is the outcome of a submitted batch
type BatchResult struct {
	BatchID   string              `json:"batch_id"`
	Items     []models.Submission `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// BatchService authors questions in batches. Drafts go upstream one at a time in
// order; a failing draft is recorded and the rest of the batch continues.
type BatchService struct {
	log      logger.Logger
	client   QuestionCreator
	repo     repository.SubmissionRepository
	observer SubmissionObserver
	newID    func() string
}

// NewBatchService creates a new BatchService
func NewBatchService(log logger.Logger, client QuestionCreator, repo repository.SubmissionRepository) *BatchService {
	return &BatchService{
		log:    log,
		client: client,
		repo:   repo,
		newID:  func() string { return uuid.NewString() },
	}
}

// SetObserver sets where submission statuses are reported
func (s *BatchService) SetObserver(o SubmissionObserver) {
	s.observer = o
}

func checkBatch(season string, drafts []questions.Draft) error {
	if season == "" {
		return ErrSeasonRequired
	}
	if len(drafts) == 0 {
		return ErrEmptyBatch
	}
	if len(drafts) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	return nil
}

// prepare decodes and validates one draft
func prepare(i int, d questions.Draft) (questions.Question, error) {
	q, err := questions.Decode(d)
	if err != nil {
		return nil, &DraftError{Index: i, Err: err}
	}
	if err := q.Validate(); err != nil {
		return q, &DraftError{Index: i, Err: err}
	}
	return q, nil
}

// Preview validates drafts and renders their summaries without submitting anything
func (s *BatchService) Preview(season string, drafts []questions.Draft) ([]Preview, error) {
	if err := checkBatch(season, drafts); err != nil {
		return nil, err
	}
	out := make([]Preview, len(drafts))
	for i, d := range drafts {
		p := Preview{Index: i, Kind: d.Kind}
		q, err := prepare(i, d)
		if q != nil {
			p.Summary = q.Summary()
		}
		if err != nil {
			p.Error = err.Error()
		} else {
			p.Payload = q.Payload(season)
		}
		out[i] = p
	}
	return out, nil
}

// Submit sends every draft upstream in order and records each outcome. Once ctx
// is cancelled the remaining drafts are recorded as failed without being sent.
func (s *BatchService) Submit(ctx context.Context, season string, drafts []questions.Draft) (*BatchResult, error) {
	if err := checkBatch(season, drafts); err != nil {
		return nil, err
	}

	// records are written even after ctx is cancelled
	recordCtx := context.WithoutCancel(ctx)

	result := &BatchResult{BatchID: s.newID(), Items: make([]models.Submission, 0, len(drafts))}
	s.log.Info("Submitting question batch", "batch", result.BatchID, "season", season, "count", len(drafts))

	for i, d := range drafts {
		sub := models.Submission{
			BatchID: result.BatchID,
			Index:   i,
			Kind:    string(d.Kind),
			Season:  season,
			Status:  models.SubmissionOK,
		}

		q, err := prepare(i, d)
		if q != nil {
			sub.Summary = q.Summary()
		}
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			sub.RemoteID, err = s.client.CreateQuestion(ctx, q.Payload(season))
		}
		if err != nil {
			sub.Status = models.SubmissionError
			sub.Error = err.Error()
			result.Failed++
			s.log.Warn("Question submission failed", "batch", result.BatchID, "index", i, "error", err)
		} else {
			result.Succeeded++
		}

		sub.ID, err = s.repo.RecordSubmission(recordCtx, sub)
		if err != nil {
			s.log.Error("Failed to record submission", "batch", result.BatchID, "index", i, "error", err)
		}
		if s.observer != nil {
			s.observer.SubmissionRecorded(sub.Status)
		}
		result.Items = append(result.Items, sub)
	}

	s.log.Info("Question batch done", "batch", result.BatchID, "succeeded", result.Succeeded, "failed", result.Failed)
	return result, nil
}

// Batch returns the recorded outcomes of a batch
func (s *BatchService) Batch(ctx context.Context, batchID string) ([]models.Submission, error) {
	return s.repo.ListSubmissions(ctx, batchID)
}
