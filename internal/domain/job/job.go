package job

import "time"

type Type string

const (
	TypeFullTime   Type = "full-time"
	TypePartTime   Type = "part-time"
	TypeContract   Type = "contract"
	TypeInternship Type = "internship"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusClosed   Status = "closed"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFullTime, TypePartTime, TypeContract, TypeInternship:
		return true
	default:
		return false
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusClosed:
		return true
	default:
		return false
	}
}

type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	SalaryMin   *int64    `json:"salary_min"`
	SalaryMax   *int64    `json:"salary_max"`
	Type        Type      `json:"type"`
	Status      Status    `json:"status"`
	PostedBy    int64     `json:"posted_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter narrows a job listing. Title and Location match as
// case-insensitive substrings; Statuses empty means any status.
type Filter struct {
	Title    string
	Location string
	Type     Type
	Statuses []Status
	Limit    int
	Offset   int
}
