package app

import (
	"context"

	"jobboard/internal/domain/application"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

// viewAssembler joins applications with their job and applicant. Lookups
// are cached for the lifetime of one assembler, so build one per call.
type viewAssembler struct {
	jobs  job.Repository
	users user.Repository

	jobCache  map[int64]application.JobSnapshot
	userCache map[int64]application.UserSnapshot
}

func newViewAssembler(jobs job.Repository, users user.Repository) *viewAssembler {
	return &viewAssembler{
		jobs:      jobs,
		users:     users,
		jobCache:  make(map[int64]application.JobSnapshot),
		userCache: make(map[int64]application.UserSnapshot),
	}
}

func (a *viewAssembler) remember(j *job.Job) {
	a.jobCache[j.ID] = application.NewJobSnapshot(*j)
}

func (a *viewAssembler) view(ctx context.Context, app application.Application) (application.View, error) {
	js, ok := a.jobCache[app.JobID]
	if !ok {
		j, err := a.jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return application.View{}, err
		}
		js = application.NewJobSnapshot(*j)
		a.jobCache[app.JobID] = js
	}
	us, ok := a.userCache[app.UserID]
	if !ok {
		u, err := a.users.GetByID(ctx, app.UserID)
		if err != nil {
			return application.View{}, err
		}
		us = application.NewUserSnapshot(*u)
		a.userCache[app.UserID] = us
	}
	return application.NewView(app, js, us), nil
}

func (a *viewAssembler) views(ctx context.Context, apps []application.Application) ([]application.View, error) {
	out := make([]application.View, 0, len(apps))
	for _, app := range apps {
		v, err := a.view(ctx, app)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
