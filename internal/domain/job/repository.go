package job

import "context"

type Repository interface {
	Create(ctx context.Context, job Job) (*Job, error)
	Update(ctx context.Context, job Job) (*Job, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	// FindOpenByTitle returns a non-closed job with the given title,
	// ignoring excludeID when it is non-zero.
	FindOpenByTitle(ctx context.Context, title string, excludeID int64) (*Job, error)
	List(ctx context.Context, filter Filter) ([]Job, int, error)
	Count(ctx context.Context) (int, error)
}
