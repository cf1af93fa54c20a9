package application

import "context"

type Repository interface {
	// Create inserts a new application. A (job_id, user_id) uniqueness
	// violation is reported as a conflict error.
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id int64) (*Application, error)
	FindByJobAndUser(ctx context.Context, jobID, userID int64) (*Application, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Application, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter) ([]Application, int, error)
	CountByJob(ctx context.Context, jobID int64) (int, error)
}
