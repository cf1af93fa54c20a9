package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"jobboard/internal/common"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

// JobInput carries the fields of a create or partial update. Nil means the
// field was not supplied.
type JobInput struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Company     *string     `json:"company"`
	Location    *string     `json:"location"`
	SalaryMin   *int64      `json:"salary_min"`
	SalaryMax   *int64      `json:"salary_max"`
	Type        *job.Type   `json:"type"`
	Status      *job.Status `json:"status"`
}

func (in JobInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Company == nil && in.Location == nil &&
		in.SalaryMin == nil && in.SalaryMax == nil && in.Type == nil && in.Status == nil
}

// closesOnly reports whether the update does nothing but close the job.
func (in JobInput) closesOnly() bool {
	return in.Status != nil && job.Status(strings.ToLower(strings.TrimSpace(string(*in.Status)))) == job.StatusClosed &&
		in.Title == nil && in.Description == nil && in.Company == nil && in.Location == nil &&
		in.SalaryMin == nil && in.SalaryMax == nil && in.Type == nil
}

type jobFields struct {
	Title       string     `json:"title" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"required,min=10"`
	Company     string     `json:"company" validate:"required,min=2,max=100"`
	Location    string     `json:"location" validate:"required,min=2,max=100"`
	SalaryMin   *int64     `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax   *int64     `json:"salary_max" validate:"omitempty,min=0"`
	Type        job.Type   `json:"type" validate:"oneof=full-time part-time contract internship"`
	Status      job.Status `json:"status" validate:"oneof=active inactive closed"`
}

func fieldsOf(j job.Job) jobFields {
	return jobFields{
		Title:       j.Title,
		Description: j.Description,
		Company:     j.Company,
		Location:    j.Location,
		SalaryMin:   j.SalaryMin,
		SalaryMax:   j.SalaryMax,
		Type:        j.Type,
		Status:      j.Status,
	}
}

func (f *jobFields) apply(in JobInput) {
	if in.Title != nil {
		f.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		f.Description = strings.TrimSpace(*in.Description)
	}
	if in.Company != nil {
		f.Company = strings.TrimSpace(*in.Company)
	}
	if in.Location != nil {
		f.Location = strings.TrimSpace(*in.Location)
	}
	if in.SalaryMin != nil {
		f.SalaryMin = in.SalaryMin
	}
	if in.SalaryMax != nil {
		f.SalaryMax = in.SalaryMax
	}
	if in.Type != nil {
		f.Type = job.Type(strings.ToLower(strings.TrimSpace(string(*in.Type))))
	}
	if in.Status != nil {
		f.Status = job.Status(strings.ToLower(strings.TrimSpace(string(*in.Status))))
	}
}

func (f jobFields) check() error {
	if err := validate.Struct(f); err != nil {
		return validationError("invalid job", err)
	}
	if f.SalaryMin != nil && f.SalaryMax != nil && *f.SalaryMin > *f.SalaryMax {
		return common.NewValidationError("minimum salary cannot be greater than maximum salary",
			map[string]string{"salary_min": "must not exceed salary_max"})
	}
	return nil
}

func (f jobFields) into(j *job.Job) {
	j.Title = f.Title
	j.Description = f.Description
	j.Company = f.Company
	j.Location = f.Location
	j.SalaryMin = f.SalaryMin
	j.SalaryMax = f.SalaryMax
	j.Type = f.Type
	j.Status = f.Status
}

type JobListFilter struct {
	Title    string
	Location string
	Type     job.Type
	Status   job.Status
	Page     int
	Limit    int
}

type JobPage struct {
	Jobs       []job.Job  `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

type JobService struct {
	repo         job.Repository
	applications application.Repository
	pages        PageRules
}

func NewJobService(repo job.Repository, applications application.Repository, pages PageRules) *JobService {
	return &JobService{repo: repo, applications: applications, pages: pages}
}

func (s *JobService) Create(ctx context.Context, actor user.Identity, in JobInput) (*job.Job, error) {
	if err := requireRole(actor, user.RoleAdmin); err != nil {
		return nil, err
	}
	fields := jobFields{Type: job.TypeFullTime, Status: job.StatusActive}
	fields.apply(in)
	if err := fields.check(); err != nil {
		return nil, err
	}
	if err := s.ensureTitleAvailable(ctx, fields, 0); err != nil {
		return nil, err
	}
	created := job.Job{PostedBy: actor.ID}
	fields.into(&created)
	out, err := s.repo.Create(ctx, created)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "job created", slog.Int64("job_id", out.ID), slog.Int64("actor_id", actor.ID))
	return out, nil
}

func (s *JobService) Update(ctx context.Context, actor user.Identity, id int64, in JobInput) (*job.Job, error) {
	if err := requireRole(actor, user.RoleAdmin); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, common.NewError(common.CodeValidation, "no valid fields to update", nil)
	}
	if !in.closesOnly() {
		count, err := s.applications.CountByJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, common.NewError(common.CodeInvalidState, `job has applications, only setting its status to "closed" is allowed`, nil)
		}
	}
	fields := fieldsOf(*current)
	fields.apply(in)
	if err := fields.check(); err != nil {
		return nil, err
	}
	if err := s.ensureTitleAvailable(ctx, fields, id); err != nil {
		return nil, err
	}
	fields.into(current)
	out, err := s.repo.Update(ctx, *current)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "job updated", slog.Int64("job_id", id), slog.Int64("actor_id", actor.ID))
	return out, nil
}

func (s *JobService) ensureTitleAvailable(ctx context.Context, fields jobFields, excludeID int64) error {
	if fields.Status == job.StatusClosed {
		return nil
	}
	existing, err := s.repo.FindOpenByTitle(ctx, fields.Title, excludeID)
	if err == nil {
		conflict := common.NewError(common.CodeConflict, "a job with this title already exists", nil)
		conflict.Fields = map[string]string{"title": fmt.Sprintf("already used by job %d", existing.ID)}
		return conflict
	}
	if !common.Is(err, common.CodeNotFound) {
		return err
	}
	return nil
}

// Delete removes a job that has no applications. Jobs with applications
// should be closed instead.
func (s *JobService) Delete(ctx context.Context, actor user.Identity, id int64) error {
	if err := requireRole(actor, user.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	count, err := s.applications.CountByJob(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.NewError(common.CodeInvalidState, `cannot delete job with existing applications, set its status to "closed" instead`, nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "job deleted", slog.Int64("job_id", id), slog.Int64("actor_id", actor.ID))
	return nil
}

// Get hides anything but active jobs from non-admin callers.
func (s *JobService) Get(ctx context.Context, actor user.Identity, id int64) (*job.Job, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != job.StatusActive && !actor.IsAdmin() {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	return item, nil
}

func (s *JobService) List(ctx context.Context, actor user.Identity, filter JobListFilter) (*JobPage, error) {
	page, limit, err := s.pages.resolve(filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if filter.Type != "" && !filter.Type.Valid() {
		fields["type"] = "must be one of: full-time, part-time, contract, internship"
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fields["status"] = "must be one of: active, inactive, closed"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid filter", fields)
	}

	query := job.Filter{
		Title:    filter.Title,
		Location: filter.Location,
		Type:     filter.Type,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	switch {
	case actor.IsAdmin():
		if filter.Status != "" {
			query.Statuses = []job.Status{filter.Status}
		}
	case filter.Status != "" && filter.Status != job.StatusActive:
		return &JobPage{Jobs: []job.Job{}, Pagination: newPagination(page, limit, 0)}, nil
	default:
		query.Statuses = []job.Status{job.StatusActive}
	}

	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &JobPage{Jobs: items, Pagination: newPagination(page, limit, total)}, nil
}
