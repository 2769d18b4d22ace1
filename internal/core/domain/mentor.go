package domain

import "time"

// MentorStage is the coarse project phase tracked on a Mentor.
type MentorStage string

const (
	MentorOnboarding           MentorStage = "onboarding"
	MentorConceptGeneration    MentorStage = "concept_generation"
	MentorConceptReview        MentorStage = "concept_review"
	MentorStructureDevelopment MentorStage = "structure_development"
	MentorStructureReview      MentorStage = "structure_review"
	MentorEmailSequence        MentorStage = "email_sequence"
	MentorProduction           MentorStage = "production"
)

var mentorStageRank = map[MentorStage]int{
	MentorOnboarding:           0,
	MentorConceptGeneration:    1,
	MentorConceptReview:        2,
	MentorStructureDevelopment: 3,
	MentorStructureReview:      4,
	MentorEmailSequence:        5,
	MentorProduction:           6,
}

// stagePrerequisites lists the approvals each phase needs before it can start.
var stagePrerequisites = map[MentorStage][]ContentType{
	MentorOnboarding:           nil,
	MentorConceptGeneration:    nil,
	MentorConceptReview:        nil,
	MentorStructureDevelopment: {ContentConcept},
	MentorStructureReview:      {ContentConcept},
	MentorEmailSequence:        {ContentConcept, ContentStructure},
	MentorProduction:           {ContentConcept, ContentStructure, ContentEmailSequence},
}

func ParseMentorStage(raw string) (MentorStage, error) {
	stage := MentorStage(raw)
	if _, ok := mentorStageRank[stage]; !ok {
		return "", Invalid("parse mentor stage", "unknown stage %q", raw)
	}
	return stage, nil
}

func (s MentorStage) Prerequisites() []ContentType {
	return stagePrerequisites[s]
}

// Before reports whether s is an earlier phase than other.
func (s MentorStage) Before(other MentorStage) bool {
	return mentorStageRank[s] < mentorStageRank[other]
}

// StageAfterApproval is the phase a mentor enters once content of type c is approved.
func StageAfterApproval(c ContentType) MentorStage {
	switch c {
	case ContentConcept:
		return MentorStructureDevelopment
	case ContentStructure:
		return MentorEmailSequence
	default:
		return MentorProduction
	}
}

type MentorStatus string

const (
	MentorActive   MentorStatus = "active"
	MentorArchived MentorStatus = "archived"
)

// MentorProfile carries the editable business context of a mentor.
type MentorProfile struct {
	Name           string `json:"name" bson:"name"`
	Email          string `json:"email" bson:"email"`
	BusinessName   string `json:"business_name" bson:"business_name"`
	Niche          string `json:"niche" bson:"niche"`
	TargetAudience string `json:"target_audience" bson:"target_audience"`
	Offer          string `json:"offer" bson:"offer"`
	PricePoint     string `json:"price_point" bson:"price_point"`
	Mechanism      string `json:"mechanism" bson:"mechanism"`
	Story          string `json:"story" bson:"story"`
	Tone           string `json:"tone" bson:"tone"`
	Language       string `json:"language" bson:"language"`
}

// Merge overwrites fields of p with the non-empty fields of update.
func (p *MentorProfile) Merge(update MentorProfile) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Name, update.Name)
	set(&p.Email, update.Email)
	set(&p.BusinessName, update.BusinessName)
	set(&p.Niche, update.Niche)
	set(&p.TargetAudience, update.TargetAudience)
	set(&p.Offer, update.Offer)
	set(&p.PricePoint, update.PricePoint)
	set(&p.Mechanism, update.Mechanism)
	set(&p.Story, update.Story)
	set(&p.Tone, update.Tone)
	set(&p.Language, update.Language)
}

type Mentor struct {
	ID             string        `json:"id" bson:"_id"`
	UserID         string        `json:"user_id" bson:"user_id"`
	Profile        MentorProfile `json:"profile" bson:"profile"`
	CurrentStage   MentorStage   `json:"current_stage" bson:"current_stage"`
	Status         MentorStatus  `json:"status" bson:"status"`
	StageStartedAt time.Time     `json:"stage_started_at" bson:"stage_started_at"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" bson:"updated_at"`
}

// Advance moves the mentor to stage when it is further along than the current one.
func (m *Mentor) Advance(stage MentorStage, now time.Time) bool {
	if !m.CurrentStage.Before(stage) {
		return false
	}
	m.CurrentStage = stage
	m.StageStartedAt = now
	m.UpdatedAt = now
	return true
}
