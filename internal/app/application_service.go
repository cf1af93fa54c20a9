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

type ApplicationRules struct {
	CoverLetterMin int
	CoverLetterMax int
}

func DefaultApplicationRules() ApplicationRules {
	return ApplicationRules{CoverLetterMin: 10, CoverLetterMax: 2000}
}

type SubmitInput struct {
	JobID       int64
	CoverLetter string
	CVLink      string
}

type ListFilter struct {
	JobID  int64
	Status application.Status
	Page   int
	Limit  int
}

type ApplicationPage struct {
	Applications []application.View `json:"applications"`
	Pagination   Pagination         `json:"pagination"`
}

type JobApplications struct {
	Job          job.Job            `json:"job"`
	Applications []application.View `json:"applications"`
}

type ApplicationService struct {
	repo  application.Repository
	jobs  job.Repository
	users user.Repository
	rules ApplicationRules
	pages PageRules
}

func NewApplicationService(repo application.Repository, jobs job.Repository, users user.Repository, rules ApplicationRules, pages PageRules) *ApplicationService {
	return &ApplicationService{repo: repo, jobs: jobs, users: users, rules: rules, pages: pages}
}

// Submit records a new pending application for actor. Checks run in a fixed
// order and the first failure is returned.
func (s *ApplicationService) Submit(ctx context.Context, actor user.Identity, in SubmitInput) (*application.View, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	coverLetter, cvLink, err := s.validateSubmission(in)
	if err != nil {
		return nil, err
	}
	target, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if target.Status != job.StatusActive {
		return nil, common.NewError(common.CodeInvalidState, "cannot apply to inactive job", nil)
	}
	if _, err := s.repo.FindByJobAndUser(ctx, in.JobID, actor.ID); err == nil {
		return nil, common.NewError(common.CodeConflict, "already applied to this job", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	created, err := s.repo.Create(ctx, application.Application{
		JobID:       in.JobID,
		UserID:      actor.ID,
		CoverLetter: coverLetter,
		CVLink:      cvLink,
		Status:      application.StatusPending,
	})
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "application submitted",
		slog.Int64("application_id", created.ID),
		slog.Int64("job_id", created.JobID),
		slog.Int64("user_id", created.UserID))

	views := newViewAssembler(s.jobs, s.users)
	views.remember(target)
	v, err := views.view(ctx, *created)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *ApplicationService) validateSubmission(in SubmitInput) (string, *string, error) {
	fields := map[string]string{}
	coverLetter := strings.TrimSpace(in.CoverLetter)
	rule := fmt.Sprintf("required,min=%d,max=%d", s.rules.CoverLetterMin, s.rules.CoverLetterMax)
	if err := validate.Var(coverLetter, rule); err != nil {
		fields["cover_letter"] = fmt.Sprintf("must be between %d and %d characters", s.rules.CoverLetterMin, s.rules.CoverLetterMax)
	}
	var cvLink *string
	if link := strings.TrimSpace(in.CVLink); link != "" {
		if err := validate.Var(link, "url"); err != nil {
			fields["cv_link"] = "must be a valid URL"
		}
		cvLink = &link
	}
	if in.JobID <= 0 {
		fields["job_id"] = "is required"
	}
	if len(fields) > 0 {
		return "", nil, common.NewValidationError("invalid application", fields)
	}
	return coverLetter, cvLink, nil
}

// UpdateStatus lets an admin move an application to any known status.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor user.Identity, id int64, status application.Status) (*application.View, error) {
	if err := requireRole(actor, user.RoleAdmin); err != nil {
		return nil, err
	}
	next := application.Status(strings.ToLower(strings.TrimSpace(string(status))))
	if !next.Valid() {
		return nil, common.NewValidationError("invalid status", map[string]string{"status": "must be one of: pending, reviewed, accepted, rejected"})
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "application status changed",
		slog.Int64("application_id", id),
		slog.String("from", string(current.Status)),
		slog.String("to", string(next)),
		slog.Int64("actor_id", actor.ID))
	v, err := newViewAssembler(s.jobs, s.users).view(ctx, *updated)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes an application in any status. Only its owner or an admin
// may do so.
func (s *ApplicationService) Delete(ctx context.Context, actor user.Identity, id int64) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(current.UserID) && !actor.IsAdmin() {
		return common.NewError(common.CodeForbidden, "access denied", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "application deleted", slog.Int64("application_id", id), slog.Int64("actor_id", actor.ID))
	return nil
}

func (s *ApplicationService) Get(ctx context.Context, actor user.Identity, id int64) (*application.View, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(current.UserID) && !actor.IsAdmin() {
		return nil, common.NewError(common.CodeForbidden, "access denied", nil)
	}
	v, err := newViewAssembler(s.jobs, s.users).view(ctx, *current)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns a page of applications, newest first. Non-admin callers only
// ever see their own.
func (s *ApplicationService) List(ctx context.Context, actor user.Identity, filter ListFilter) (*ApplicationPage, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	page, limit, err := s.pages.resolve(filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, common.NewValidationError("invalid filter", map[string]string{"status": "must be one of: pending, reviewed, accepted, rejected"})
	}
	query := application.Filter{
		JobID:  filter.JobID,
		Status: filter.Status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if !actor.IsAdmin() {
		query.UserID = actor.ID
	}
	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	views, err := newViewAssembler(s.jobs, s.users).views(ctx, items)
	if err != nil {
		return nil, err
	}
	return &ApplicationPage{Applications: views, Pagination: newPagination(page, limit, total)}, nil
}

// ListByJob returns every application for one job. Admin only.
func (s *ApplicationService) ListByJob(ctx context.Context, actor user.Identity, jobID int64) (*JobApplications, error) {
	if err := requireRole(actor, user.RoleAdmin); err != nil {
		return nil, err
	}
	target, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	items, _, err := s.repo.List(ctx, application.Filter{JobID: jobID})
	if err != nil {
		return nil, err
	}
	assembler := newViewAssembler(s.jobs, s.users)
	assembler.remember(target)
	views, err := assembler.views(ctx, items)
	if err != nil {
		return nil, err
	}
	return &JobApplications{Job: *target, Applications: views}, nil
}
