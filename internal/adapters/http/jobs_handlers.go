package httpadapter

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

const multipartMemoryBytes = 8 << 20

// jobView is the public job shape; the payload stays internal.
type jobView struct {
	ID            string           `json:"id"`
	JobType       domain.JobType   `json:"job_type"`
	MentorID      string           `json:"mentor_id"`
	Status        domain.JobStatus `json:"status"`
	Progress      int              `json:"progress"`
	Message       string           `json:"message"`
	ResultAssetID string           `json:"result_asset_id,omitempty"`
	Error         string           `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func newJobView(job *domain.ProcessingJob) jobView {
	return jobView{
		ID:            job.ID,
		JobType:       job.JobType,
		MentorID:      job.MentorID,
		Status:        job.Status,
		Progress:      job.Progress,
		Message:       job.Message,
		ResultAssetID: job.ResultAssetID,
		Error:         job.Error,
		CreatedAt:     job.CreatedAt,
		UpdatedAt:     job.UpdatedAt,
	}
}

func (rt *Router) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := rt.jobs.GetJob(r.Context(), r.PathValue("jobID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newJobView(job))
}

func (rt *Router) uploadContext(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.UploadMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(rt.cfg.UploadMaxBytes))
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, domain.Invalid("upload context", "multipart form expected: %v", err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	req := domain.UploadJobRequest{
		MentorID:      r.FormValue("mentor_id"),
		OnboardingDoc: r.FormValue("onboarding_doc"),
		HookAnalysis:  r.FormValue("hook_analysis"),
	}
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			writeError(w, r, domain.Invalid("upload context", "open %s: %v", header.Filename, err))
			return
		}
		opened = append(opened, f)
		req.Files = append(req.Files, domain.UploadedFile{
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Body:     f,
		})
	}

	job, err := rt.jobs.StartUpload(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"job_id": job.ID, "status": job.Status})
}
