package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// PipelineMetrics records generation, review and job outcomes.
type PipelineMetrics struct {
	generations    *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	reviews        *prometheus.CounterVec
	jobs           *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	breakerState   *prometheus.GaugeVec
}

func NewPipelineMetrics(registerer prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "steps_total",
				Help:      "Pipeline steps by content type and whether fallback content was used.",
			},
			[]string{"content_type", "step", "fallback"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "provider_errors_total",
				Help:      "Text provider failures by kind.",
			},
			[]string{"kind"},
		),
		reviews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "approval",
				Name:      "reviews_total",
				Help:      "Completed reviews by content type and action.",
			},
			[]string{"content_type", "action"},
		),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "finished_total",
				Help:      "Finished background jobs by type and terminal status.",
			},
			[]string{"job_type", "status"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "jobs",
				Name:      "duration_seconds",
				Help:      "Background job run time.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"job_type"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "resilience",
				Name:      "breaker_state",
				Help:      "Circuit breaker state per operation: 0 closed, 1 half-open, 2 open.",
			},
			[]string{"operation"},
		),
	}
	registerer.MustRegister(m.generations, m.providerErrors, m.reviews, m.jobs, m.jobDuration, m.breakerState)
	return m
}

func (m *PipelineMetrics) ObserveGeneration(contentType domain.ContentType, step domain.PipelineStep, fallback bool) {
	m.generations.WithLabelValues(string(contentType), string(step), strconv.FormatBool(fallback)).Inc()
}

func (m *PipelineMetrics) ObserveProviderError(kind domain.ProviderErrorKind) {
	m.providerErrors.WithLabelValues(string(kind)).Inc()
}

func (m *PipelineMetrics) ObserveReview(contentType domain.ContentType, action domain.ReviewAction) {
	m.reviews.WithLabelValues(string(contentType), string(action)).Inc()
}

func (m *PipelineMetrics) ObserveJob(jobType domain.JobType, status domain.JobStatus, duration time.Duration) {
	m.jobs.WithLabelValues(string(jobType), string(status)).Inc()
	m.jobDuration.WithLabelValues(string(jobType)).Observe(duration.Seconds())
}

// ObserveBreakerState matches resilience.StateObserver.
func (m *PipelineMetrics) ObserveBreakerState(operation string, _ gobreaker.State, to gobreaker.State) {
	var value float64
	switch to {
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	m.breakerState.WithLabelValues(operation).Set(value)
}
