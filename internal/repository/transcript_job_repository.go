package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/collegeportal/admission-api/internal/models"
)

// TranscriptJobRepository stores transcript generation job metadata.
type TranscriptJobRepository struct {
	db *sqlx.DB
}

// NewTranscriptJobRepository creates a new instance of TranscriptJobRepository.
func NewTranscriptJobRepository(db *sqlx.DB) *TranscriptJobRepository {
	return &TranscriptJobRepository{db: db}
}

const transcriptJobColumns = `id, application_id, kind, status, file_path, result_url, created_by, created_at, finished_at, error_message`

// Create inserts a queued job.
func (r *TranscriptJobRepository) Create(ctx context.Context, job *models.TranscriptJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.TranscriptStatusQueued
	}
	const query = `INSERT INTO transcript_jobs (id, application_id, kind, status, file_path, result_url, created_by, created_at, finished_at, error_message) VALUES (:id, :application_id, :kind, :status, :file_path, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create transcript job: %w", err)
	}
	return nil
}

// FindByID returns a job by identifier.
func (r *TranscriptJobRepository) FindByID(ctx context.Context, id string) (*models.TranscriptJob, error) {
	query := fmt.Sprintf(`SELECT %s FROM transcript_jobs WHERE id = $1 LIMIT 1`, transcriptJobColumns)
	var job models.TranscriptJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find transcript job: %w", err)
	}
	return &job, nil
}

// MarkProcessing transitions a job to PROCESSING.
func (r *TranscriptJobRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `UPDATE transcript_jobs SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.TranscriptStatusProcessing); err != nil {
		return fmt.Errorf("mark transcript job processing: %w", err)
	}
	return nil
}

// MarkFinished records the produced file and download URL.
func (r *TranscriptJobRepository) MarkFinished(ctx context.Context, id, filePath, resultURL string, finishedAt time.Time) error {
	const query = `UPDATE transcript_jobs SET status = $2, file_path = $3, result_url = $4, finished_at = $5, error_message = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.TranscriptStatusFinished, filePath, resultURL, finishedAt); err != nil {
		return fmt.Errorf("mark transcript job finished: %w", err)
	}
	return nil
}

// MarkFailed records the failure reason.
func (r *TranscriptJobRepository) MarkFailed(ctx context.Context, id, message string, finishedAt time.Time) error {
	const query = `UPDATE transcript_jobs SET status = $2, error_message = $3, finished_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.TranscriptStatusFailed, message, finishedAt); err != nil {
		return fmt.Errorf("mark transcript job failed: %w", err)
	}
	return nil
}

// ListExpired returns finished jobs older than the cutoff, for file cleanup.
func (r *TranscriptJobRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]models.TranscriptJob, error) {
	query := fmt.Sprintf(`SELECT %s FROM transcript_jobs WHERE status = $1 AND finished_at < $2`, transcriptJobColumns)
	var jobs []models.TranscriptJob
	if err := r.db.SelectContext(ctx, &jobs, query, models.TranscriptStatusFinished, cutoff); err != nil {
		return nil, fmt.Errorf("list expired transcript jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a job record.
func (r *TranscriptJobRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM transcript_jobs WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete transcript job: %w", err)
	}
	return nil
}
