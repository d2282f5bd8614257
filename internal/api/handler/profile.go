package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/arjunks/datahound/internal/api/middleware"
	"github.com/arjunks/datahound/internal/api/response"
	"github.com/arjunks/datahound/internal/profile"
	"github.com/arjunks/datahound/internal/store"
	"github.com/arjunks/datahound/pkg/models"
)

// Profiler is the profile service surface the handlers depend on.
type Profiler interface {
	Run(ctx context.Context, tenantID, datasetID uuid.UUID, cfg models.ProfileConfig, method models.MethodConfig) (*models.Report, error)
	Trigger(ctx context.Context, tenantID, datasetID uuid.UUID, cfg models.ProfileConfig, method models.MethodConfig) (*models.Job, error)
	Job(ctx context.Context, jobID, tenantID uuid.UUID) (*models.Job, error)
	Result(ctx context.Context, jobID uuid.UUID) (*models.Report, bool, error)
}

type profileRequest struct {
	DatasetID string               `json:"dataset_id"`
	Config    models.ProfileConfig `json:"config"`
	Method    models.MethodConfig  `json:"method"`
}

func decodeProfileRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, *profileRequest, bool) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return uuid.Nil, nil, false
	}
	if req.DatasetID == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "dataset_id is required", nil)
		return uuid.Nil, nil, false
	}
	datasetID, err := uuid.Parse(req.DatasetID)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "dataset_id must be a valid UUID", nil)
		return uuid.Nil, nil, false
	}
	return datasetID, &req, true
}

func writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Dataset not found", nil)
	case errors.Is(err, profile.ErrEmptyDataset):
		response.Error(w, http.StatusBadRequest, "EMPTY_DATASET", "Dataset has no rows", nil)
	case errors.Is(err, profile.ErrFieldNotFound):
		response.Error(w, http.StatusBadRequest, "FIELD_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, profile.ErrThresholdUnavailable):
		response.Error(w, http.StatusUnprocessableEntity, "THRESHOLD_UNAVAILABLE", err.Error(), nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
	}
}

// NewProfileHandler returns the handler for POST /api/v1/profile: run the
// analysis synchronously and return the full report.
func NewProfileHandler(svc Profiler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		datasetID, req, ok := decodeProfileRequest(w, r)
		if !ok {
			return
		}

		report, err := svc.Run(r.Context(), tenantID, datasetID, req.Config, req.Method)
		if err != nil {
			writeProfileError(w, err)
			return
		}
		response.JSON(w, report)
	}
}

// NewProfileAsyncHandler returns the handler for POST /api/v1/profile/async:
// create a job, start the analysis in the background and return 202.
func NewProfileAsyncHandler(svc Profiler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		datasetID, req, ok := decodeProfileRequest(w, r)
		if !ok {
			return
		}

		job, err := svc.Trigger(r.Context(), tenantID, datasetID, req.Config, req.Method)
		if err != nil {
			writeProfileError(w, err)
			return
		}
		response.Accepted(w, map[string]any{
			"job_id": job.ID,
			"status": job.Status,
		})
	}
}

// NewPollJobHandler returns the handler for GET /api/v1/profile/{jobID}.
// Completed jobs include the cached report; an expired report is flagged so
// the client knows to re-run the analysis.
func NewPollJobHandler(svc Profiler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid job id", nil)
			return
		}

		job, err := svc.Job(r.Context(), jobID, tenantID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load job", nil)
			return
		}

		body := map[string]any{
			"job_id": job.ID,
			"status": job.Status,
		}
		if job.ErrorMessage != nil {
			body["error_message"] = *job.ErrorMessage
		}
		if job.Status == models.JobStatusCompleted {
			report, found, err := svc.Result(r.Context(), jobID)
			if err != nil {
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load report", nil)
				return
			}
			if found {
				body["report"] = report
			} else {
				body["report_expired"] = true
			}
		}
		response.JSON(w, body)
	}
}
