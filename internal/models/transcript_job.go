package models

import "time"

// TranscriptKind selects which printable document a job produces.
type TranscriptKind string

const (
	TranscriptKindApplication TranscriptKind = "application"
	TranscriptKindReceipt     TranscriptKind = "receipt"
)

// TranscriptStatus captures background job lifecycle states.
type TranscriptStatus string

const (
	TranscriptStatusQueued     TranscriptStatus = "QUEUED"
	TranscriptStatusProcessing TranscriptStatus = "PROCESSING"
	TranscriptStatusFinished   TranscriptStatus = "FINISHED"
	TranscriptStatusFailed     TranscriptStatus = "FAILED"
)

// TranscriptJob is the persisted metadata of a transcript PDF generation job.
type TranscriptJob struct {
	ID            string           `db:"id" json:"id"`
	ApplicationID string           `db:"application_id" json:"applicationId"`
	Kind          TranscriptKind   `db:"kind" json:"kind"`
	Status        TranscriptStatus `db:"status" json:"status"`
	FilePath      *string          `db:"file_path" json:"-"`
	ResultURL     *string          `db:"result_url" json:"resultUrl,omitempty"`
	CreatedBy     string           `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
	FinishedAt    *time.Time       `db:"finished_at" json:"finishedAt,omitempty"`
	ErrorMessage  *string          `db:"error_message" json:"errorMessage,omitempty"`
}
