package domain

import (
	"strings"
	"time"
)

type ApprovalRecordStatus string

const (
	RecordPending           ApprovalRecordStatus = "pending"
	RecordApproved          ApprovalRecordStatus = "approved"
	RecordRejected          ApprovalRecordStatus = "rejected"
	RecordRevisionRequested ApprovalRecordStatus = "revision_requested"
)

type ReviewAction string

const (
	ActionApprove         ReviewAction = "approve"
	ActionReject          ReviewAction = "reject"
	ActionRequestRevision ReviewAction = "request_revision"
)

func ParseReviewAction(raw string) (ReviewAction, error) {
	switch action := ReviewAction(strings.ToLower(strings.TrimSpace(raw))); action {
	case ActionApprove, ActionReject, ActionRequestRevision:
		return action, nil
	default:
		return "", Invalid("parse review action", "unknown action %q", raw)
	}
}

// ContentSnapshot is a point-in-time copy of submitted content.
type ContentSnapshot struct {
	Body            *ContentBody   `json:"body,omitempty" bson:"body,omitempty"`
	SelectedConcept *ConceptRecord `json:"selected_concept,omitempty" bson:"selected_concept,omitempty"`
}

// ApprovalRecord is one submission in the append-only review history.
type ApprovalRecord struct {
	ID                   string               `json:"id" bson:"_id"`
	AssetID              string               `json:"asset_id" bson:"asset_id"`
	MentorID             string               `json:"mentor_id" bson:"mentor_id"`
	ContentType          ContentType          `json:"content_type" bson:"content_type"`
	Version              int                  `json:"version" bson:"version"`
	IterationCount       int                  `json:"iteration_count" bson:"iteration_count"`
	PreviousVersionID    string               `json:"previous_version_id,omitempty" bson:"previous_version_id,omitempty"`
	Snapshot             ContentSnapshot      `json:"content_snapshot" bson:"content_snapshot"`
	Status               ApprovalRecordStatus `json:"status" bson:"status"`
	AdminNotes           string               `json:"admin_notes,omitempty" bson:"admin_notes,omitempty"`
	RevisionInstructions string               `json:"revision_instructions,omitempty" bson:"revision_instructions,omitempty"`
	SubmittedAt          time.Time            `json:"submitted_at" bson:"submitted_at"`
	ReviewedAt           *time.Time           `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
}

type ReviewRequest struct {
	ApprovalID           string
	Action               ReviewAction
	Notes                string
	RevisionInstructions string
}

type ApprovalStatusView struct {
	CanProceed    bool           `json:"can_proceed"`
	CurrentStatus ApprovalStatus `json:"current_status"`
	Version       int            `json:"version"`
	Notes         string         `json:"notes,omitempty"`
	Message       string         `json:"message"`
}

type ProceedCheck struct {
	CanProceed       bool     `json:"can_proceed"`
	MissingApprovals []string `json:"missing_approvals"`
}
