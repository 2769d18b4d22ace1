package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/config"
	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
	"github.com/kirillkom/webinar-pipeline/internal/core/ports"
	"github.com/kirillkom/webinar-pipeline/internal/observability/metrics"
)

const maxJSONBodyBytes = 1 << 20

// ToneChecker scores free text against the active profile's guardrails.
type ToneChecker interface {
	Validate(text string) domain.ToneReport
}

type Router struct {
	cfg       config.Config
	mentors   ports.MentorService
	pipeline  ports.ContentPipeline
	approvals ports.ApprovalWorkflow
	jobs      ports.JobScheduler
	tone      ToneChecker
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	mentors ports.MentorService,
	pipeline ports.ContentPipeline,
	approvals ports.ApprovalWorkflow,
	jobs ports.JobScheduler,
	tone ToneChecker,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		mentors:   mentors,
		pipeline:  pipeline,
		approvals: approvals,
		jobs:      jobs,
		tone:      tone,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("GET /v1/mentors", rt.listMentors)
	mux.HandleFunc("PUT /v1/mentors/by-user/{userID}", rt.upsertMentor)
	mux.HandleFunc("GET /v1/mentors/{mentorID}", rt.getMentor)
	mux.HandleFunc("DELETE /v1/mentors/{mentorID}", rt.deleteMentor)
	mux.HandleFunc("POST /v1/mentors/{mentorID}/inputs", rt.uploadInputs)
	// by-user/{userID}, {mentorID}/inputs and {mentorID}/asset overlap as mux patterns.
	mux.HandleFunc("GET /v1/mentors/{mentorID}/{resource}", rt.getMentorResource)

	mux.HandleFunc("POST /v1/pipeline/{mentorID}/{contentType}/{action}", rt.runPipelineStep)
	mux.HandleFunc("GET /v1/pipeline/{mentorID}/{contentType}/stage", rt.stageStatus)

	mux.HandleFunc("GET /v1/assets/{assetID}", rt.getAsset)
	mux.HandleFunc("POST /v1/assets/{assetID}/select-concept", rt.selectConcept)

	mux.HandleFunc("POST /v1/webinar/upload-context", rt.uploadContext)
	mux.HandleFunc("GET /v1/jobs/{jobID}", rt.getJob)

	mux.HandleFunc("POST /v1/approvals/submit", rt.submitApproval)
	mux.HandleFunc("POST /v1/approvals/review", rt.reviewApproval)
	mux.HandleFunc("GET /v1/approvals/status/{assetID}/{contentType}", rt.approvalStatus)
	mux.HandleFunc("GET /v1/approvals/can-proceed/{mentorID}/{targetStage}", rt.canProceed)
	mux.HandleFunc("GET /v1/approvals/history/{assetID}", rt.approvalHistory)

	mux.HandleFunc("POST /v1/tone/validate", rt.validateTone)

	var handler http.Handler = mux
	var onLimited func()
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
		onLimited = func() { rt.metrics.RecordRateLimited("api") }
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, onLimited)
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) validateTone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, domain.Invalid("validate tone", "text is required"))
		return
	}
	writeJSON(w, http.StatusOK, rt.tone.Validate(req.Text))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON rejects unknown fields and oversized bodies. An empty body decodes to the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return domain.WrapError(domain.ErrInvalidInput, "decode request", fmt.Errorf("invalid json: %w", err))
	}
	return nil
}

func pathContentType(r *http.Request) (domain.ContentType, error) {
	return domain.ParseContentType(r.PathValue("contentType"))
}
