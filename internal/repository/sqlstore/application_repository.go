package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobboard/internal/common"
	"jobboard/internal/database"
	"jobboard/internal/domain/application"
)

const applicationColumns = `id, job_id, user_id, cover_letter, cv_link, status, created_at, updated_at`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	row := r.db.QueryRowContext(ctx, `INSERT INTO applications (job_id, user_id, cover_letter, cv_link, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		app.JobID, app.UserID, app.CoverLetter, nullString(app.CVLink), app.Status, app.CreatedAt, app.UpdatedAt)
	if err := row.Scan(&app.ID); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, common.NewError(common.CodeConflict, "already applied to this job", err)
		case database.IsForeignKeyViolation(err):
			return nil, common.NewError(common.CodeInvalidState, "job or user no longer exists", err)
		default:
			return nil, common.NewError(common.CodeInternal, "failed to create application", err)
		}
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) FindByJobAndUser(ctx context.Context, jobID, userID int64) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 AND user_id = $2`, jobID, userID)
	return scanApplication(row)
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status application.Status) (*application.Application, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update application", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete application", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter application.Filter) ([]application.Application, int, error) {
	w := &where{}
	if filter.JobID > 0 {
		w.add("job_id = " + w.arg(filter.JobID))
	}
	if filter.UserID > 0 {
		w.add("user_id = " + w.arg(filter.UserID))
	}
	if filter.Status != "" {
		w.add("status = " + w.arg(filter.Status))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to count applications", err)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications` + w.String() + ` ORDER BY created_at DESC, id DESC`
	query += w.page(filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	items := []application.Application{}
	for rows.Next() {
		item, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, total, nil
}

func (r *ApplicationRepository) CountByJob(ctx context.Context, jobID int64) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE job_id = $1`, jobID).Scan(&total); err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to count applications", err)
	}
	return total, nil
}

func scanApplication(row scanner) (*application.Application, error) {
	var (
		app    application.Application
		cvLink sql.NullString
	)
	if err := row.Scan(&app.ID, &app.JobID, &app.UserID, &app.CoverLetter, &cvLink, &app.Status, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	app.CVLink = stringPtr(cvLink)
	return &app, nil
}
