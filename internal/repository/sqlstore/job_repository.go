package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/database"
	"jobboard/internal/domain/job"
)

const jobColumns = `id, title, description, company, location, salary_min, salary_max, job_type, status, posted_by, created_at, updated_at`

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, j job.Job) (*job.Job, error) {
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	row := r.db.QueryRowContext(ctx, `INSERT INTO jobs (title, description, company, location, salary_min, salary_max, job_type, status, posted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		j.Title, j.Description, j.Company, j.Location, nullInt(j.SalaryMin), nullInt(j.SalaryMax), j.Type, j.Status, j.PostedBy, j.CreatedAt, j.UpdatedAt)
	if err := row.Scan(&j.ID); err != nil {
		return nil, jobWriteError("failed to create job", "job poster does not exist", err)
	}
	return &j, nil
}

func (r *JobRepository) Update(ctx context.Context, j job.Job) (*job.Job, error) {
	j.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE jobs SET title = $1, description = $2, company = $3, location = $4, salary_min = $5, salary_max = $6, job_type = $7, status = $8, updated_at = $9
		WHERE id = $10`,
		j.Title, j.Description, j.Company, j.Location, nullInt(j.SalaryMin), nullInt(j.SalaryMax), j.Type, j.Status, j.UpdatedAt, j.ID)
	if err != nil {
		return nil, jobWriteError("failed to update job", "job poster does not exist", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, j.ID)
}

func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return jobWriteError("failed to delete job", "cannot delete job with existing applications", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "job not found", sql.ErrNoRows)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id int64) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

// FindOpenByTitle returns a non-closed job with exactly this title, ignoring
// excludeID (pass 0 to ignore nothing).
func (r *JobRepository) FindOpenByTitle(ctx context.Context, title string, excludeID int64) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE title = $1 AND status <> $2 AND id <> $3 LIMIT 1`,
		title, job.StatusClosed, excludeID)
	return scanJob(row)
}

func (r *JobRepository) List(ctx context.Context, filter job.Filter) ([]job.Job, int, error) {
	w := &where{}
	if s := strings.TrimSpace(filter.Title); s != "" {
		w.add("LOWER(title) LIKE LOWER(" + w.arg(containsPattern(s)) + ")")
	}
	if s := strings.TrimSpace(filter.Location); s != "" {
		w.add("LOWER(location) LIKE LOWER(" + w.arg(containsPattern(s)) + ")")
	}
	if filter.Type != "" {
		w.add("job_type = " + w.arg(filter.Type))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			placeholders = append(placeholders, w.arg(st))
		}
		w.add("status IN (" + strings.Join(placeholders, ", ") + ")")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to count jobs", err)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs` + w.String() + ` ORDER BY created_at DESC, id DESC`
	query += w.page(filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	defer rows.Close()
	items := []job.Job{}
	for rows.Next() {
		item, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list jobs", err)
	}
	return items, total, nil
}

func (r *JobRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count jobs", err)
	}
	return total, nil
}

func scanJob(row scanner) (*job.Job, error) {
	var (
		j         job.Job
		salaryMin sql.NullInt64
		salaryMax sql.NullInt64
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Company, &j.Location, &salaryMin, &salaryMax, &j.Type, &j.Status, &j.PostedBy, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "job not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load job", err)
	}
	j.SalaryMin = intPtr(salaryMin)
	j.SalaryMax = intPtr(salaryMax)
	return &j, nil
}

func jobWriteError(message, fkMessage string, err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return common.NewError(common.CodeConflict, "job with this title already exists", err)
	case database.IsForeignKeyViolation(err):
		return common.NewError(common.CodeInvalidState, fkMessage, err)
	default:
		return common.NewError(common.CodeInternal, message, err)
	}
}
