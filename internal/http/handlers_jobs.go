package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/target/competitions-api/internal/domain/model"
	"github.com/target/competitions-api/internal/service"
)

// JobHandlers provides HTTP handlers for inspecting and enqueueing jobs.
type JobHandlers struct {
	errorResponder

	Svc *service.JobService
}

// NewJobHandlers creates JobHandlers.
func NewJobHandlers(svc *service.JobService, logger *slog.Logger) *JobHandlers {
	return &JobHandlers{errorResponder: newErrorResponder(logger), Svc: svc}
}

// CreateJob handles POST /jobs. Any producer may enqueue any type; unknown types
// are stored and later fail in the worker.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var body createJobBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	req := body.toModel()
	if !validRequest(w, &body, req.Validate) {
		return
	}

	job, err := h.Svc.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

type jobListResponse struct {
	Jobs   []*model.Job `json:"jobs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ListJobs handles GET /jobs?type=&status=&limit=&offset=.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter, err := jobFilter(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_query", Err: err})
		return
	}
	limit, offset := ParseLimitOffset(r, defaultPageLimit, maxPageLimit)

	jobs, err := h.Svc.List(r.Context(), &model.JobListOptions{JobFilter: filter, Limit: limit, Offset: offset})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	total, err := h.Svc.Count(r.Context(), &filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	WriteJSON(w, http.StatusOK, jobListResponse{Jobs: jobs, Total: total, Limit: limit, Offset: offset})
}

func jobFilter(r *http.Request) (model.JobFilter, error) {
	var f model.JobFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t := model.JobType(v)
		if !t.Valid() {
			return f, errors.New("invalid job type")
		}
		f.Type = &t
	}
	if v := q.Get("status"); v != "" {
		var s model.JobStatus
		if err := s.UnmarshalText([]byte(v)); err != nil {
			return f, errors.New("status must be one of: pending processing done failed")
		}
		f.Status = &s
	}
	return f, nil
}

// GetJob handles GET /jobs/{id}.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	job, err := h.Svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

type jobStatsResponse struct {
	*model.JobStats

	Total int `json:"total"`
}

// Stats handles GET /jobs/stats.
func (h *JobHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, jobStatsResponse{JobStats: stats, Total: stats.Total()})
}
