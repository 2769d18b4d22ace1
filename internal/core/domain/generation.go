package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GenerationMode controls whether the pipeline talks to the text provider.
type GenerationMode string

const (
	// ModeLive requires a configured provider; runtime failures still fall back.
	ModeLive GenerationMode = "live"
	// ModeMockForced never calls the provider.
	ModeMockForced GenerationMode = "mock_forced"
	// ModeMockOnFailure calls the provider when one is configured and falls back otherwise.
	ModeMockOnFailure GenerationMode = "mock_on_failure"
)

func ParseGenerationMode(raw string) (GenerationMode, error) {
	switch mode := GenerationMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case ModeLive, ModeMockForced, ModeMockOnFailure:
		return mode, nil
	case "":
		return ModeMockOnFailure, nil
	default:
		return "", Invalid("parse generation mode", "unknown generation mode %q", raw)
	}
}

type ProviderErrorKind string

const (
	ProviderRateLimited ProviderErrorKind = "rate_limited"
	ProviderOther       ProviderErrorKind = "other"
)

// ProviderError is returned by text generation clients for any failed call.
type ProviderError struct {
	Kind       ProviderErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a classified provider error from a status code and message.
func NewProviderError(statusCode int, message string, err error) *ProviderError {
	kind := ProviderOther
	if statusCode == http.StatusTooManyRequests || mentionsRateLimit(message) {
		kind = ProviderRateLimited
	}
	if message == "" && err != nil {
		message = err.Error()
	}
	return &ProviderError{Kind: kind, StatusCode: statusCode, Message: message, Err: err}
}

// ClassifyProviderError returns err as a ProviderError, classifying unknown errors by their text.
func ClassifyProviderError(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr
	}
	return NewProviderError(0, err.Error(), err)
}

func mentionsRateLimit(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit")
}

type PipelineStep string

const (
	StepGenerate PipelineStep = "generate"
	StepEvaluate PipelineStep = "evaluate"
	StepImprove  PipelineStep = "improve"
	StepRefine   PipelineStep = "refine"
	// StepOverview plans the email sequence before the full copy is generated.
	StepOverview PipelineStep = "overview"
)

// SingleEmailRequest asks for one email built from an outline. ConceptContext may be
// left empty to use the mentor's selected concept.
type SingleEmailRequest struct {
	Outline        string `json:"email_outline"`
	ConceptContext string `json:"concept_context"`
}

// SingleEmailResult carries every step of a single-email draft, critique and rewrite.
type SingleEmailResult struct {
	MentorID     string `json:"mentor_id"`
	Draft        string `json:"draft"`
	Evaluation   string `json:"evaluation"`
	FinalEmail   string `json:"final_email"`
	MockFallback bool   `json:"mock_fallback"`
	MockReason   string `json:"mock_reason,omitempty"`
}

// StepResult is what a pipeline operation reports back to its caller.
type StepResult struct {
	MentorID       string       `json:"mentor_id"`
	AssetID        string       `json:"asset_id"`
	ContentType    ContentType  `json:"content_type"`
	Step           PipelineStep `json:"step"`
	SubStage       SubStage     `json:"sub_stage"`
	IterationCount int          `json:"iteration_count"`
	Content        *ContentBody `json:"content,omitempty"`
	Evaluation     string       `json:"evaluation,omitempty"`
	Tone           *ToneReport  `json:"tone,omitempty"`
	MockFallback   bool         `json:"mock_fallback"`
	MockReason     string       `json:"mock_reason,omitempty"`
}
