package domain

import "strings"

// ContentType names one of the three generated artifacts of a webinar project.
type ContentType string

const (
	ContentConcept       ContentType = "concept"
	ContentStructure     ContentType = "structure"
	ContentEmailSequence ContentType = "email_sequence"
)

var ContentTypes = []ContentType{ContentConcept, ContentStructure, ContentEmailSequence}

// ParseContentType accepts API names as well as stage type names.
func ParseContentType(raw string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "concept", "concepts":
		return ContentConcept, nil
	case "structure", "slides":
		return ContentStructure, nil
	case "email_sequence", "email", "emails":
		return ContentEmailSequence, nil
	default:
		return "", Invalid("parse content type", "unknown content type %q", raw)
	}
}

func (c ContentType) StageType() StageType {
	switch c {
	case ContentStructure:
		return StageStructure
	case ContentEmailSequence:
		return StageEmails
	default:
		return StageConcept
	}
}

// Upstream returns the content type whose approval gates generation of c.
func (c ContentType) Upstream() (ContentType, bool) {
	switch c {
	case ContentStructure:
		return ContentConcept, true
	case ContentEmailSequence:
		return ContentStructure, true
	default:
		return "", false
	}
}

// Label is the human-facing name used in gate messages.
func (c ContentType) Label() string {
	switch c {
	case ContentConcept:
		return "Webinar Concept"
	case ContentStructure:
		return "Slide Structure"
	case ContentEmailSequence:
		return "Email Sequences"
	default:
		return string(c)
	}
}

type StageType string

const (
	StageConcept   StageType = "CONCEPT"
	StageStructure StageType = "STRUCTURE"
	StageEmails    StageType = "EMAILS"
)

func (s StageType) Order() int {
	switch s {
	case StageConcept:
		return 1
	case StageStructure:
		return 2
	case StageEmails:
		return 3
	default:
		return 0
	}
}

func (s StageType) DisplayName() string {
	switch s {
	case StageConcept:
		return "Concept Generation"
	case StageStructure:
		return "Webinar Structure"
	case StageEmails:
		return "Email Sequence"
	default:
		return string(s)
	}
}

type StageStatus string

const (
	StageStatusPending    StageStatus = "PENDING"
	StageStatusInProgress StageStatus = "IN_PROGRESS"
	StageStatusApproved   StageStatus = "APPROVED"
)

type SubStage string

const (
	SubStageInitial        SubStage = "INITIAL"
	SubStageSelfEval       SubStage = "SELF_EVAL"
	SubStageImproved       SubStage = "IMPROVED"
	SubStageMentorFeedback SubStage = "MENTOR_FEEDBACK"
)

// ApprovalStatus is the per-content-type review state stored on an Asset.
type ApprovalStatus string

const (
	ApprovalDraft             ApprovalStatus = "draft"
	ApprovalPending           ApprovalStatus = "pending"
	ApprovalApproved          ApprovalStatus = "approved"
	ApprovalRevisionRequested ApprovalStatus = "revision_requested"
)
