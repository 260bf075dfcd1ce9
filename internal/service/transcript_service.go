package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/collegeportal/admission-api/internal/dto"
	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/transcript"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
	"github.com/collegeportal/admission-api/pkg/jobs"
	"github.com/collegeportal/admission-api/pkg/storage"
)

const transcriptJobType = "transcript_pdf"

type transcriptJobStore interface {
	Create(ctx context.Context, job *models.TranscriptJob) error
	FindByID(ctx context.Context, id string) (*models.TranscriptJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, filePath, resultURL string, finishedAt time.Time) error
	MarkFailed(ctx context.Context, id, message string, finishedAt time.Time) error
	ListExpired(ctx context.Context, cutoff time.Time) ([]models.TranscriptJob, error)
	Delete(ctx context.Context, id string) error
}

type transcriptApplicationStore interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// TranscriptService queues PDF generation jobs for submitted applications and
// resolves signed download links once a job has finished.
type TranscriptService struct {
	jobs    transcriptJobStore
	apps    transcriptApplicationStore
	courses admissionCourseCatalog
	queue   jobDispatcher
	signer  *storage.SignedURLSigner
	blobs   storage.BlobStore
	logger  *zap.Logger
	now     func() time.Time
}

// NewTranscriptService constructs a TranscriptService.
func NewTranscriptService(jobStore transcriptJobStore, apps transcriptApplicationStore, courses admissionCourseCatalog, queue jobDispatcher, signer *storage.SignedURLSigner, blobs storage.BlobStore, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{
		jobs:    jobStore,
		apps:    apps,
		courses: courses,
		queue:   queue,
		signer:  signer,
		blobs:   blobs,
		logger:  logger,
		now:     time.Now,
	}
}

// Request queues a transcript job for an application. Students may only
// request transcripts of their own applications; receipts additionally
// require a completed payment.
func (s *TranscriptService) Request(ctx context.Context, applicationID string, kind models.TranscriptKind, actorID string, role models.UserRole) (*dto.TranscriptJobResponse, error) {
	if kind != models.TranscriptKindApplication && kind != models.TranscriptKindReceipt {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown transcript kind")
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if role != models.RoleAdmin && app.UserID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this application")
	}
	if kind == models.TranscriptKindReceipt {
		if app.PaymentDetails == nil || app.PaymentDetails.Status != models.PaymentCompleted {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a payment receipt requires a completed payment")
		}
	}

	job := &models.TranscriptJob{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		Kind:          kind,
		Status:        models.TranscriptStatusQueued,
		CreatedBy:     actorID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create transcript job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: transcriptJobType, Payload: job.ID}); err != nil {
		if failErr := s.jobs.MarkFailed(ctx, job.ID, "queue unavailable", s.now().UTC()); failErr != nil {
			s.logger.Warn("failed to mark unqueued job", zap.String("job_id", job.ID), zap.Error(failErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue transcript job")
	}

	return &dto.TranscriptJobResponse{JobID: job.ID, Status: job.Status}, nil
}

// Status reports a job's progress. Only the user who queued the job or an
// admin can inspect it.
func (s *TranscriptService) Status(ctx context.Context, jobID, actorID string, role models.UserRole) (*dto.TranscriptJobResponse, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "transcript job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript job")
	}
	if role != models.RoleAdmin && job.CreatedBy != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this transcript job")
	}

	resp := &dto.TranscriptJobResponse{JobID: job.ID, Status: job.Status}
	if job.ResultURL != nil {
		resp.DownloadURL = *job.ResultURL
	}
	if job.ErrorMessage != nil {
		resp.Error = *job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates a signed token and streams the finished PDF.
func (s *TranscriptService) ResolveDownload(ctx context.Context, token string) (io.ReadCloser, string, error) {
	if s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrInternal, "transcript downloads are not configured")
	}
	jobID, key, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "transcript job not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript job")
	}
	if job.Status != models.TranscriptStatusFinished {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "transcript is not ready yet")
	}
	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "transcript file is no longer available")
	}
	return rc, fmt.Sprintf("%s-%s.pdf", job.Kind, job.ApplicationID), nil
}

// StartCleanup launches a background loop that deletes finished jobs whose
// download window has lapsed, along with their stored PDFs.
func (s *TranscriptService) StartCleanup(ctx context.Context, interval, retention time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx, retention)
			}
		}
	}()
}

func (s *TranscriptService) cleanupExpired(ctx context.Context, retention time.Duration) {
	cutoff := s.now().Add(-retention).UTC()
	expired, err := s.jobs.ListExpired(ctx, cutoff)
	if err != nil {
		s.logger.Warn("transcript cleanup listing failed", zap.Error(err))
		return
	}
	for _, job := range expired {
		if job.FilePath != nil && *job.FilePath != "" {
			if err := s.blobs.Delete(ctx, *job.FilePath); err != nil {
				s.logger.Warn("failed to delete transcript blob", zap.String("job_id", job.ID), zap.Error(err))
				continue
			}
		}
		if err := s.jobs.Delete(ctx, job.ID); err != nil {
			s.logger.Warn("failed to delete transcript job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(expired) > 0 {
		s.logger.Info("transcript cleanup pass complete", zap.Int("removed", len(expired)))
	}
}

// TranscriptWorker renders queued transcript jobs to PDF.
type TranscriptWorker struct {
	jobs       transcriptJobStore
	apps       transcriptApplicationStore
	courses    admissionCourseCatalog
	renderer   *transcript.PDFRenderer
	blobs      storage.BlobStore
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time
}

// NewTranscriptWorker constructs the worker used as the queue handler.
func NewTranscriptWorker(jobStore transcriptJobStore, apps transcriptApplicationStore, courses admissionCourseCatalog, renderer *transcript.PDFRenderer, blobs storage.BlobStore, signer *storage.SignedURLSigner, maxRetries int, logger *zap.Logger) *TranscriptWorker {
	if renderer == nil {
		renderer = transcript.NewPDFRenderer()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptWorker{
		jobs:       jobStore,
		apps:       apps,
		courses:    courses,
		renderer:   renderer,
		blobs:      blobs,
		signer:     signer,
		logger:     logger,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Handle processes one queued job. Returning an error triggers the queue's
// retry; the job is only marked FAILED once the final attempt is spent.
func (w *TranscriptWorker) Handle(ctx context.Context, job jobs.Job) error {
	jobID := job.Payload
	if jobID == "" {
		jobID = job.ID
	}
	if err := w.process(ctx, jobID); err != nil {
		if job.Attempt >= w.maxRetries {
			if failErr := w.jobs.MarkFailed(ctx, jobID, err.Error(), w.now().UTC()); failErr != nil {
				w.logger.Error("failed to mark transcript job failed", zap.String("job_id", jobID), zap.Error(failErr))
			}
		}
		return err
	}
	return nil
}

func (w *TranscriptWorker) process(ctx context.Context, jobID string) error {
	job, err := w.jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job.Status == models.TranscriptStatusFinished {
		return nil
	}
	if err := w.jobs.MarkProcessing(ctx, job.ID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	app, err := w.apps.FindByID(ctx, job.ApplicationID)
	if err != nil {
		return fmt.Errorf("load application %s: %w", job.ApplicationID, err)
	}
	var course *models.Course
	if app.CourseSelection != nil && app.CourseSelection.CourseID != "" {
		course, err = w.courses.FindByID(ctx, app.CourseSelection.CourseID)
		if err != nil {
			return fmt.Errorf("load course %s: %w", app.CourseSelection.CourseID, err)
		}
	}

	generatedAt := w.now().UTC()
	var doc transcript.Document
	switch job.Kind {
	case models.TranscriptKindReceipt:
		doc = transcript.BuildReceipt(*app, course, generatedAt)
	default:
		doc = transcript.BuildApplication(*app, course, generatedAt)
	}

	pdf, err := w.renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	key := fmt.Sprintf("transcripts/%s.pdf", job.ID)
	if err := w.blobs.Put(ctx, key, bytes.NewReader(pdf)); err != nil {
		return fmt.Errorf("store pdf: %w", err)
	}

	token, _, err := w.signer.Generate(job.ID, key)
	if err != nil {
		return fmt.Errorf("sign download url: %w", err)
	}
	resultURL := "/api/v1/transcripts/download/" + token
	if err := w.jobs.MarkFinished(ctx, job.ID, key, resultURL, w.now().UTC()); err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}
	w.logger.Info("transcript rendered",
		zap.String("job_id", job.ID),
		zap.String("application_id", job.ApplicationID),
		zap.String("kind", string(job.Kind)))
	return nil
}
