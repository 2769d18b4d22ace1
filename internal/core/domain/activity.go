package domain

import "time"

type ActivityAction string

const (
	ActivityDocumentsUploaded ActivityAction = "DOCUMENTS_UPLOADED"
	ActivityDocumentsUpdated  ActivityAction = "DOCUMENTS_UPDATED"
)

// PerformedByAdmin is the actor recorded for operator-driven changes.
const PerformedByAdmin = "ADMIN"

// ActivityEntry is one line of a mentor's audit trail.
type ActivityEntry struct {
	ID          string         `json:"id" bson:"_id"`
	MentorID    string         `json:"mentor_id" bson:"mentor_id"`
	Action      ActivityAction `json:"action" bson:"action"`
	Stage       MentorStage    `json:"stage,omitempty" bson:"stage,omitempty"`
	PerformedBy string         `json:"performed_by" bson:"performed_by"`
	Timestamp   time.Time      `json:"timestamp" bson:"timestamp"`
}
