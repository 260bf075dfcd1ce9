package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeportal/admission-api/internal/models"
)

func queuedJob() *models.TranscriptJob {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	return &models.TranscriptJob{
		ID:            "job-1",
		ApplicationID: "APP10042",
		Kind:          models.TranscriptKindReceipt,
		Status:        models.TranscriptStatusQueued,
		CreatedBy:     "u1",
		CreatedAt:     now,
	}
}

func transcriptJobRows(job *models.TranscriptJob) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "application_id", "kind", "status", "file_path", "result_url", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow(job.ID, job.ApplicationID, string(job.Kind), string(job.Status),
			job.FilePath, job.ResultURL, job.CreatedBy, job.CreatedAt, job.FinishedAt, job.ErrorMessage)
}

func TestCreateTranscriptJob(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTranscriptJobRepository(db)

	mock.ExpectExec("INSERT INTO transcript_jobs").WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), queuedJob()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTranscriptJobDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTranscriptJobRepository(db)

	mock.ExpectExec("INSERT INTO transcript_jobs").WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.TranscriptJob{ApplicationID: "APP10042", Kind: models.TranscriptKindApplication, CreatedBy: "u1"}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.TranscriptStatusQueued, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTranscriptJobByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTranscriptJobRepository(db)

	want := queuedJob()
	mock.ExpectQuery("SELECT .* FROM transcript_jobs WHERE id").
		WithArgs("job-1").
		WillReturnRows(transcriptJobRows(want))

	got, err := repo.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "APP10042", got.ApplicationID)
	assert.Equal(t, models.TranscriptKindReceipt, got.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTranscriptJobNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTranscriptJobRepository(db)

	mock.ExpectQuery("SELECT .* FROM transcript_jobs WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkTranscriptJobFinished(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTranscriptJobRepository(db)

	mock.ExpectExec("UPDATE transcript_jobs SET status").
		WithArgs("job-1", string(models.TranscriptStatusFinished), "transcripts/job-1.pdf", "/api/v1/transcripts/download/tok", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFinished(context.Background(), "job-1", "transcripts/job-1.pdf", "/api/v1/transcripts/download/tok", time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkTranscriptJobFailed(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTranscriptJobRepository(db)

	mock.ExpectExec("UPDATE transcript_jobs SET status").
		WithArgs("job-1", string(models.TranscriptStatusFailed), "render failed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFailed(context.Background(), "job-1", "render failed", time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExpiredTranscriptJobs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTranscriptJobRepository(db)

	finished := queuedJob()
	finished.Status = models.TranscriptStatusFinished
	cutoff := time.Date(2026, 1, 22, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .* FROM transcript_jobs WHERE status").
		WithArgs(string(models.TranscriptStatusFinished), cutoff).
		WillReturnRows(transcriptJobRows(finished))

	jobs, err := repo.ListExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
