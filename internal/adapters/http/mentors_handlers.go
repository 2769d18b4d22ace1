package httpadapter

import (
	"net/http"
	"strconv"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func (rt *Router) upsertMentor(w http.ResponseWriter, r *http.Request) {
	var profile domain.MentorProfile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeError(w, r, err)
		return
	}
	mentor, err := rt.mentors.UpsertProfile(r.Context(), r.PathValue("userID"), profile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mentor)
}

func (rt *Router) getMentorResource(w http.ResponseWriter, r *http.Request) {
	first, resource := r.PathValue("mentorID"), r.PathValue("resource")
	if first == "by-user" {
		rt.getMentorByUser(w, r, resource)
		return
	}
	switch resource {
	case "inputs":
		rt.getInputs(w, r, first)
	case "asset":
		rt.latestAsset(w, r, first)
	case "activity":
		rt.mentorActivity(w, r, first)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getMentorByUser(w http.ResponseWriter, r *http.Request, userID string) {
	mentor, err := rt.mentors.GetMentorByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mentor)
}

func (rt *Router) getMentor(w http.ResponseWriter, r *http.Request) {
	mentor, err := rt.mentors.GetMentor(r.Context(), r.PathValue("mentorID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mentor)
}

func (rt *Router) listMentors(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mentors, err := rt.mentors.ListMentors(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mentors": mentors, "skip": skip, "limit": limit})
}

func (rt *Router) deleteMentor(w http.ResponseWriter, r *http.Request) {
	if err := rt.mentors.DeleteMentor(r.Context(), r.PathValue("mentorID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) uploadInputs(w http.ResponseWriter, r *http.Request) {
	var upload domain.InputUpload
	if err := decodeJSON(w, r, &upload); err != nil {
		writeError(w, r, err)
		return
	}
	inputs, err := rt.mentors.UploadInputs(r.Context(), r.PathValue("mentorID"), upload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inputs)
}

func (rt *Router) getInputs(w http.ResponseWriter, r *http.Request, mentorID string) {
	inputs, err := rt.mentors.GetInputs(r.Context(), mentorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inputs)
}

func (rt *Router) latestAsset(w http.ResponseWriter, r *http.Request, mentorID string) {
	asset, err := rt.pipeline.LatestAsset(r.Context(), mentorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (rt *Router) mentorActivity(w http.ResponseWriter, r *http.Request, mentorID string) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := rt.mentors.Activity(r.Context(), mentorID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mentor_id": mentorID, "entries": entries})
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Invalid("parse query", "%s must be a non-negative integer", key)
	}
	return n, nil
}
