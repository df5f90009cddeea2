package dto

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageQuery is embedded in every list filter. Pages are 1-based.
type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize replaces out-of-range values with the defaults.
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// Offset is the number of rows skipped before the requested page.
func (q PageQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Pagination is the metadata block of every list response.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func NewPagination(total int64, q PageQuery) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(q.Limit)))
	}
	return Pagination{Total: total, Page: q.Page, Limit: q.Limit, Pages: pages}
}

// MessageResponse is returned by operations that have nothing else to report.
type MessageResponse struct {
	Message string `json:"message"`
}
