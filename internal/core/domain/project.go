package domain

import "time"

type Project struct {
	ID           string    `json:"id" bson:"_id"`
	MentorID     string    `json:"mentor_id" bson:"mentor_id"`
	Title        string    `json:"title" bson:"title"`
	CurrentStage string    `json:"current_stage" bson:"current_stage"`
	Status       string    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

const (
	ProjectStageInputs      = "INPUTS"
	ProjectStatusInProgress = "IN_PROGRESS"
)

// Stage is the sub-stage state machine of one content type within a project.
type Stage struct {
	ID                 string      `json:"id" bson:"_id"`
	ProjectID          string      `json:"project_id" bson:"project_id"`
	StageType          StageType   `json:"stage_type" bson:"stage_type"`
	StageName          string      `json:"stage_name" bson:"stage_name"`
	StageOrder         int         `json:"stage_order" bson:"stage_order"`
	Status             StageStatus `json:"status" bson:"status"`
	SubStage           SubStage    `json:"sub_stage" bson:"sub_stage"`
	IterationCount     int         `json:"iteration_count" bson:"iteration_count"`
	TranscriptFeedback string      `json:"transcript_feedback,omitempty" bson:"transcript_feedback,omitempty"`
	CreatedAt          time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" bson:"updated_at"`
}

// Transition moves the stage to sub and counts the iteration.
func (s *Stage) Transition(sub SubStage, now time.Time) {
	s.Status = StageStatusInProgress
	s.SubStage = sub
	s.IterationCount++
	s.UpdatedAt = now
}

// Restart begins a fresh generation cycle.
func (s *Stage) Restart(now time.Time) {
	s.Status = StageStatusInProgress
	s.SubStage = SubStageInitial
	s.IterationCount = 1
	s.TranscriptFeedback = ""
	s.UpdatedAt = now
}

// Reopen returns an approved stage to work after a rejected review.
func (s *Stage) Reopen(now time.Time) {
	s.Status = StageStatusInProgress
	s.SubStage = SubStageInitial
	s.IterationCount++
	s.UpdatedAt = now
}

// Approve is reached only through review.
func (s *Stage) Approve(now time.Time) {
	s.Status = StageStatusApproved
	s.UpdatedAt = now
}

// InputArtifact holds the raw source material a mentor supplied.
type InputArtifact struct {
	ID            string    `json:"id" bson:"_id"`
	MentorID      string    `json:"mentor_id" bson:"mentor_id"`
	ProjectID     string    `json:"project_id" bson:"project_id"`
	OnboardingDoc string    `json:"onboarding_doc" bson:"onboarding_doc"`
	HookAnalysis  string    `json:"hook_analysis" bson:"hook_analysis"`
	Transcript    string    `json:"transcript" bson:"transcript"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// InputUpload is a partial update of an InputArtifact; empty fields are kept.
type InputUpload struct {
	OnboardingDoc string `json:"onboarding_doc"`
	HookAnalysis  string `json:"hook_analysis"`
	Transcript    string `json:"transcript"`
}

func (u InputUpload) IsEmpty() bool {
	return u.OnboardingDoc == "" && u.HookAnalysis == "" && u.Transcript == ""
}
