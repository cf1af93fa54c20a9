package handlers

import (
	"net/http"
	"strings"

	"jobboard/internal/app"
	"jobboard/internal/domain/job"
	"jobboard/internal/http/response"
)

type JobHandler struct {
	jobs *app.JobService
}

func NewJobHandler(jobs *app.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

type jobResponse struct {
	Message string   `json:"message,omitempty"`
	Job     *job.Job `json:"job"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	query := r.URL.Query()
	filter := app.JobListFilter{
		Title:    strings.TrimSpace(query.Get("title")),
		Location: strings.TrimSpace(query.Get("location")),
		Type:     job.Type(strings.TrimSpace(query.Get("type"))),
		Status:   job.Status(strings.TrimSpace(query.Get("status"))),
		Page:     page,
		Limit:    limit,
	}
	items, err := h.jobs.List(r.Context(), optionalIdentity(r), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.jobs.Get(r.Context(), optionalIdentity(r), jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, jobResponse{Job: item})
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.JobInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.jobs.Create(r.Context(), actor, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, jobResponse{Message: "Job created successfully", Job: created})
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.JobInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.jobs.Update(r.Context(), actor, jobID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, jobResponse{Message: "Job updated successfully", Job: updated})
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.jobs.Delete(r.Context(), actor, jobID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, messageResponse{Message: "Job deleted successfully"})
}
