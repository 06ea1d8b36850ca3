package recording

import (
	"context"
	"encoding/json"
	"fmt"

	"classroom-recorder/internal/db"
	"classroom-recorder/internal/excel"
	"classroom-recorder/internal/filer"
	"classroom-recorder/internal/logger"
	"classroom-recorder/internal/model"
	"classroom-recorder/internal/storage"
	"classroom-recorder/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobProducer enqueues filing jobs for the filing worker.
type JobProducer interface {
	EnqueueFilingJob(ctx context.Context, job model.FilingJob) error
}

// Service files submissions through the Filer and keeps the submission
// ledger in step with each attempt. Repo and producer are optional: without
// a repo nothing is recorded, without a producer Enqueue is unavailable.
type Service struct {
	filer        *filer.Filer
	client       storage.Capability
	rootFolderID string
	repo         db.Repository
	producer     JobProducer
	groups       []string
	log          zerolog.Logger
}

type Options struct {
	Filer        *filer.Filer
	Client       storage.Capability
	RootFolderID string
	Repo         db.Repository
	Producer     JobProducer
	Groups       []string
}

func NewService(opts Options) *Service {
	return &Service{
		filer:        opts.Filer,
		client:       opts.Client,
		rootFolderID: opts.RootFolderID,
		repo:         opts.Repo,
		producer:     opts.Producer,
		groups:       opts.Groups,
		log:          logger.Component("recording"),
	}
}

// File stores sub synchronously and returns the submission id with the
// outcome. The id is empty when the submission is not on the ledger, so it
// is only handed out when Get can find it. Ledger write failures are logged
// and do not change the outcome.
func (s *Service) File(ctx context.Context, rc model.RecordingContext, sub model.Submission) (string, model.UploadResult) {
	record := model.NewSubmissionRecord(uuid.NewString(), rc, sub)

	recorded := false
	if s.repo != nil {
		if err := s.repo.InsertSubmission(ctx, &record); err != nil {
			s.log.Error().Err(err).Str("submission_id", record.ID).Msg("Failed to record submission")
		} else {
			recorded = true
		}
	}

	result := s.filer.Store(ctx, rc, sub, s.rootFolderID, s.client)
	if !recorded {
		return "", result
	}
	s.record(ctx, &record, result)
	return record.ID, result
}

// Enqueue validates sub, records it as queued and hands it to the filing
// worker. The returned id can be polled with Get.
func (s *Service) Enqueue(ctx context.Context, rc model.RecordingContext, sub model.Submission) (string, error) {
	if s.producer == nil || s.repo == nil {
		return "", fmt.Errorf("%w: filing queue is not configured", errors.ErrConfigurationMissing)
	}
	if err := sub.Validate(s.groups); err != nil {
		return "", err
	}

	id := uuid.NewString()
	record := model.NewSubmissionRecord(id, rc, sub)
	if err := s.repo.InsertSubmission(ctx, &record); err != nil {
		return "", fmt.Errorf("failed to record submission: %w", err)
	}

	if err := s.producer.EnqueueFilingJob(ctx, model.NewFilingJob(id, rc, sub)); err != nil {
		s.record(ctx, &record, model.Failed(errors.KindBackendError, err.Error()))
		return "", fmt.Errorf("failed to enqueue filing job: %w", err)
	}

	s.log.Info().Str("submission_id", id).Str("lesson", rc.Lesson()).Msg("Submission queued")
	return id, nil
}

// HandleMessage is the queue handler for filing jobs. Filing failures are
// recorded on the ledger; only undecodable jobs and ledger errors are
// returned.
func (s *Service) HandleMessage(ctx context.Context, data []byte) error {
	var job model.FilingJob
	if err := json.Unmarshal(data, &job); err != nil {
		s.log.Error().Err(err).Msg("Failed to unmarshal filing job")
		return err
	}
	return s.Process(ctx, job)
}

func (s *Service) Process(ctx context.Context, job model.FilingJob) error {
	if s.repo == nil {
		return fmt.Errorf("%w: submission ledger is not configured", errors.ErrConfigurationMissing)
	}
	log := s.log.With().Str("submission_id", job.SubmissionID).Logger()

	record, err := s.repo.GetSubmission(ctx, job.SubmissionID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load submission")
		return err
	}

	var result model.UploadResult
	rc, err := model.NewRecordingContext(job.Period, job.Section, job.Lesson)
	if err != nil {
		result = model.FailedFrom(err)
	} else {
		result = s.filer.Store(ctx, rc, job.Submission(), s.rootFolderID, s.client)
	}

	record.Apply(result)
	if err := s.repo.UpdateSubmissionResult(ctx, record); err != nil {
		log.Error().Err(err).Msg("Failed to update submission")
		return err
	}

	log.Info().Str("status", string(record.Status)).Msg("Filing job processed")
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.SubmissionRecord, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: submission ledger is not configured", errors.ErrConfigurationMissing)
	}
	return s.repo.GetSubmission(ctx, id)
}

// LessonReport renders all submissions for rc as an XLSX workbook.
func (s *Service) LessonReport(ctx context.Context, rc model.RecordingContext) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: submission ledger is not configured", errors.ErrConfigurationMissing)
	}
	records, err := s.repo.ListLessonSubmissions(ctx, rc.Period(), rc.Section(), rc.Lesson())
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return excel.LessonReport(rc, records)
}

func (s *Service) Groups() []string {
	return s.groups
}

func (s *Service) record(ctx context.Context, record *model.SubmissionRecord, result model.UploadResult) {
	if s.repo == nil {
		return
	}
	record.Apply(result)
	if err := s.repo.UpdateSubmissionResult(ctx, record); err != nil {
		s.log.Error().Err(err).Str("submission_id", record.ID).Msg("Failed to update submission")
	}
}
