package usecase

import (
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// NopObserver discards pipeline outcomes.
type NopObserver struct{}

func (NopObserver) ObserveGeneration(domain.ContentType, domain.PipelineStep, bool) {}
func (NopObserver) ObserveProviderError(domain.ProviderErrorKind)                   {}
func (NopObserver) ObserveReview(domain.ContentType, domain.ReviewAction)           {}
func (NopObserver) ObserveJob(domain.JobType, domain.JobStatus, time.Duration)      {}
