package handlers

import (
	"net/http"
	"strings"

	"jobboard/internal/app"
	"jobboard/internal/domain/application"
	"jobboard/internal/http/metrics"
	"jobboard/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	metrics      *metrics.Collector
}

func NewApplicationHandler(applications *app.ApplicationService, collector *metrics.Collector) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, metrics: collector}
}

type submitRequest struct {
	JobID       flexibleID `json:"job_id"`
	CoverLetter string     `json:"cover_letter"`
	CVLink      string     `json:"cv_link"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type applicationResponse struct {
	Message     string            `json:"message,omitempty"`
	Application *application.View `json:"application"`
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.applications.Submit(r.Context(), actor, app.SubmitInput{
		JobID:       int64(req.JobID),
		CoverLetter: req.CoverLetter,
		CVLink:      req.CVLink,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncSubmissions()
	}
	response.JSON(w, http.StatusCreated, applicationResponse{Message: "Application submitted successfully", Application: created})
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	page, limit, err := pageParams(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := queryID(r, "job_id")
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.List(r.Context(), actor, app.ListFilter{
		JobID:  jobID,
		Status: application.Status(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.applications.Get(r.Context(), actor, applicationID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, applicationResponse{Application: item})
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	status := application.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	updated, err := h.applications.UpdateStatus(r.Context(), actor, applicationID, status)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, applicationResponse{Message: "Application status updated successfully", Application: updated})
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 2)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.applications.Delete(r.Context(), actor, applicationID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, messageResponse{Message: "Application deleted successfully"})
}

func (h *ApplicationHandler) ListByJob(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idFromPath(r, 3)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.ListByJob(r.Context(), actor, jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}
