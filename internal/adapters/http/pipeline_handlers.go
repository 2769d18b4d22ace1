package httpadapter

import (
	"net/http"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func (rt *Router) runPipelineStep(w http.ResponseWriter, r *http.Request) {
	contentType, err := pathContentType(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mentorID := r.PathValue("mentorID")

	var result *domain.StepResult
	switch action := r.PathValue("action"); action {
	case "generate":
		result, err = rt.pipeline.Generate(r.Context(), mentorID, contentType)
	case "evaluate":
		result, err = rt.pipeline.Evaluate(r.Context(), mentorID, contentType)
	case "improve":
		result, err = rt.pipeline.Improve(r.Context(), mentorID, contentType)
	case "refine":
		var req struct {
			Transcript string `json:"transcript"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		result, err = rt.pipeline.RefineWithTranscript(r.Context(), mentorID, contentType, req.Transcript)
	case "single-email":
		rt.singleEmail(w, r, mentorID, contentType)
		return
	case "run-async":
		job, err := rt.jobs.StartGeneration(r.Context(), mentorID, contentType)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, newJobView(job))
		return
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown pipeline action " + action})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) singleEmail(w http.ResponseWriter, r *http.Request, mentorID string, contentType domain.ContentType) {
	if contentType != domain.ContentEmailSequence {
		writeError(w, r, domain.Invalid("single email", "single-email is only available for %s", domain.ContentEmailSequence))
		return
	}
	var req domain.SingleEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := rt.pipeline.GenerateSingleEmail(r.Context(), mentorID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) stageStatus(w http.ResponseWriter, r *http.Request) {
	contentType, err := pathContentType(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stage, err := rt.pipeline.StageStatus(r.Context(), r.PathValue("mentorID"), contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stage)
}

func (rt *Router) getAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := rt.pipeline.GetAsset(r.Context(), r.PathValue("assetID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (rt *Router) selectConcept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index        int  `json:"index"`
		FromImproved bool `json:"from_improved"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	concept, err := rt.pipeline.SelectConcept(r.Context(), r.PathValue("assetID"), req.Index, req.FromImproved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, concept)
}
