package httpadapter

import (
	"net/http"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

// submitResponse and reviewResponse add the short fields clients poll on to the full record.
type submitResponse struct {
	*domain.ApprovalRecord
	ApprovalID string `json:"approval_id"`
}

type reviewResponse struct {
	*domain.ApprovalRecord
	ApprovalID string                      `json:"approval_id"`
	NewStatus  domain.ApprovalRecordStatus `json:"new_status"`
}

func (rt *Router) submitApproval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssetID     string `json:"asset_id"`
		ContentType string `json:"content_type"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	contentType, err := domain.ParseContentType(req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	record, err := rt.approvals.Submit(r.Context(), req.AssetID, contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{ApprovalRecord: record, ApprovalID: record.ID})
}

func (rt *Router) reviewApproval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ApprovalID           string `json:"approval_id"`
		Action               string `json:"action"`
		Notes                string `json:"notes"`
		RevisionInstructions string `json:"revision_instructions"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	record, err := rt.approvals.Review(r.Context(), domain.ReviewRequest{
		ApprovalID:           req.ApprovalID,
		Action:               domain.ReviewAction(req.Action),
		Notes:                req.Notes,
		RevisionInstructions: req.RevisionInstructions,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewResponse{ApprovalRecord: record, ApprovalID: record.ID, NewStatus: record.Status})
}

func (rt *Router) approvalStatus(w http.ResponseWriter, r *http.Request) {
	contentType, err := pathContentType(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := rt.approvals.Status(r.Context(), r.PathValue("assetID"), contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) canProceed(w http.ResponseWriter, r *http.Request) {
	check, err := rt.approvals.CanProceed(r.Context(), r.PathValue("mentorID"), domain.MentorStage(r.PathValue("targetStage")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (rt *Router) approvalHistory(w http.ResponseWriter, r *http.Request) {
	var contentType domain.ContentType
	if raw := r.URL.Query().Get("content_type"); raw != "" {
		parsed, err := domain.ParseContentType(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		contentType = parsed
	}
	records, err := rt.approvals.History(r.Context(), r.PathValue("assetID"), contentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset_id": r.PathValue("assetID"), "records": records})
}
