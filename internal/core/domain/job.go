package domain

import (
	"io"
	"time"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

type JobType string

const (
	JobMultiUpload JobType = "multi_upload"
	JobGeneration  JobType = "generation"
)

// StoredFile references an uploaded file kept in object storage.
type StoredFile struct {
	Key      string `json:"key" bson:"key"`
	Filename string `json:"filename" bson:"filename"`
	MimeType string `json:"mime_type" bson:"mime_type"`
}

// JobPayload carries what the background run needs to resume from the job id alone.
type JobPayload struct {
	ContentType   ContentType  `json:"content_type,omitempty" bson:"content_type,omitempty"`
	OnboardingDoc string       `json:"onboarding_doc,omitempty" bson:"onboarding_doc,omitempty"`
	HookAnalysis  string       `json:"hook_analysis,omitempty" bson:"hook_analysis,omitempty"`
	Files         []StoredFile `json:"files,omitempty" bson:"files,omitempty"`
}

// ProcessingJob tracks one background pipeline run.
type ProcessingJob struct {
	ID            string     `json:"id" bson:"_id"`
	JobType       JobType    `json:"job_type" bson:"job_type"`
	MentorID      string     `json:"mentor_id" bson:"mentor_id"`
	Status        JobStatus  `json:"status" bson:"status"`
	Progress      int        `json:"progress" bson:"progress"`
	Message       string     `json:"message" bson:"message"`
	ResultAssetID string     `json:"result_asset_id,omitempty" bson:"result_asset_id,omitempty"`
	Error         string     `json:"error,omitempty" bson:"error,omitempty"`
	Payload       JobPayload `json:"payload" bson:"payload"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// UploadedFile is an inbound file before it reaches storage.
type UploadedFile struct {
	Filename string
	MimeType string
	Body     io.Reader
}

type UploadJobRequest struct {
	MentorID      string
	OnboardingDoc string
	HookAnalysis  string
	Files         []UploadedFile
}
