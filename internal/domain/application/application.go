package application

import (
	"time"

	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

type Application struct {
	ID          int64     `json:"id"`
	JobID       int64     `json:"job_id"`
	UserID      int64     `json:"user_id"`
	CoverLetter string    `json:"cover_letter"`
	CVLink      *string   `json:"cv_link"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter selects applications for a listing. Zero values are ignored.
type Filter struct {
	JobID  int64
	UserID int64
	Status Status
	Limit  int
	Offset int
}

type JobSnapshot struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	SalaryMin   *int64     `json:"salary_min"`
	SalaryMax   *int64     `json:"salary_max"`
	Type        job.Type   `json:"type"`
	Status      job.Status `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

type UserSnapshot struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// View is an application joined with snapshots of its job and applicant.
// It is assembled on read and never stored.
type View struct {
	ID          int64        `json:"id"`
	CoverLetter string       `json:"cover_letter"`
	CVLink      *string      `json:"cv_link"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Job         JobSnapshot  `json:"job"`
	User        UserSnapshot `json:"user"`
}

func NewJobSnapshot(j job.Job) JobSnapshot {
	return JobSnapshot{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Company:     j.Company,
		Location:    j.Location,
		SalaryMin:   j.SalaryMin,
		SalaryMax:   j.SalaryMax,
		Type:        j.Type,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
	}
}

func NewUserSnapshot(u user.User) UserSnapshot {
	return UserSnapshot{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func NewView(app Application, j JobSnapshot, u UserSnapshot) View {
	return View{
		ID:          app.ID,
		CoverLetter: app.CoverLetter,
		CVLink:      app.CVLink,
		Status:      app.Status,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
		Job:         j,
		User:        u,
	}
}
