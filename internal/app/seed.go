package app

import (
	"context"
	"log/slog"

	"jobboard/internal/common"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

type SeedInput struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

type SeedResult struct {
	AdminCreated bool
	JobsCreated  int
}

// Seeder loads an admin account and a handful of sample jobs. Running it
// twice leaves the data unchanged.
type Seeder struct {
	users *UserService
	jobs  *JobService
	repo  job.Repository
}

func NewSeeder(users *UserService, jobs *JobService, repo job.Repository) *Seeder {
	return &Seeder{users: users, jobs: jobs, repo: repo}
}

func (s *Seeder) Run(ctx context.Context, in SeedInput) (*SeedResult, error) {
	admin, created, err := s.users.EnsureAdmin(ctx, in.AdminEmail, in.AdminPassword, in.AdminName)
	if err != nil {
		return nil, err
	}
	result := &SeedResult{AdminCreated: created}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		slog.InfoContext(ctx, "jobs already present, skipping samples", slog.Int("jobs", count))
		return result, nil
	}
	actor := user.Identity{ID: admin.ID, Role: admin.Role}
	for _, sample := range sampleJobs() {
		if _, err := s.jobs.Create(ctx, actor, sample); err != nil {
			if common.Is(err, common.CodeConflict) {
				continue
			}
			return nil, err
		}
		result.JobsCreated++
	}
	return result, nil
}

func sampleJobs() []JobInput {
	str := func(s string) *string { return &s }
	num := func(n int64) *int64 { return &n }
	kind := func(t job.Type) *job.Type { return &t }
	return []JobInput{
		{
			Title:       str("Senior Frontend Developer"),
			Description: str("Build and maintain customer-facing web applications with modern JavaScript frameworks."),
			Company:     str("TechCorp Inc."),
			Location:    str("San Francisco, CA"),
			SalaryMin:   num(120000),
			SalaryMax:   num(160000),
			Type:        kind(job.TypeFullTime),
		},
		{
			Title:       str("Backend Engineer"),
			Description: str("Design scalable APIs and data pipelines for a growing platform."),
			Company:     str("StartupXYZ"),
			Location:    str("Remote"),
			SalaryMin:   num(100000),
			SalaryMax:   num(140000),
			Type:        kind(job.TypeFullTime),
		},
		{
			Title:       str("UX Designer"),
			Description: str("Shape product experiences through research, prototyping and testing."),
			Company:     str("Design Studio"),
			Location:    str("New York, NY"),
			SalaryMin:   num(80000),
			SalaryMax:   num(110000),
			Type:        kind(job.TypeContract),
		},
		{
			Title:       str("Data Science Intern"),
			Description: str("Work with the analytics team on models and reporting for product decisions."),
			Company:     str("DataDriven Co."),
			Location:    str("Austin, TX"),
			Type:        kind(job.TypeInternship),
		},
		{
			Title:       str("DevOps Engineer"),
			Description: str("Own CI/CD pipelines, infrastructure as code and production monitoring."),
			Company:     str("CloudOps Ltd."),
			Location:    str("Seattle, WA"),
			SalaryMin:   num(110000),
			SalaryMax:   num(150000),
			Type:        kind(job.TypePartTime),
		},
	}
}
