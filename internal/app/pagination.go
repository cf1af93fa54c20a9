package app

import (
	"fmt"

	"jobboard/internal/common"
)

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type PageRules struct {
	DefaultLimit int
	MaxLimit     int
}

func DefaultPageRules() PageRules {
	return PageRules{DefaultLimit: 10, MaxLimit: 50}
}

// resolve applies defaults to zero values and rejects anything out of range.
func (r PageRules) resolve(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = r.DefaultLimit
	}
	fields := map[string]string{}
	if page < 1 {
		fields["page"] = "must be at least 1"
	}
	if limit < 1 || limit > r.MaxLimit {
		fields["limit"] = fmt.Sprintf("must be between 1 and %d", r.MaxLimit)
	}
	if len(fields) > 0 {
		return 0, 0, common.NewValidationError("invalid pagination", fields)
	}
	return page, limit, nil
}

func newPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
