package models

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination describes the window returned by list endpoints.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

// PageRequest is a sanitized page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest falls back to defaults for out-of-range input. Page is
// capped so Offset never overflows; such a page is simply empty.
func NewPageRequest(page, limit int) PageRequest {
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginate builds the response metadata; TotalPages is ceil(total/limit).
func (p PageRequest) Paginate(total int) Pagination {
	return Pagination{
		CurrentPage: p.Page,
		PerPage:     p.Limit,
		Total:       total,
		TotalPages:  (total + p.Limit - 1) / p.Limit,
	}
}

// ListResponse is the body of every list endpoint.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ItemResponse wraps a single record.
type ItemResponse[T any] struct {
	Data T `json:"data"`
}
