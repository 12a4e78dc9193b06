package domain

import "github.com/segyhp/clinic-billing/pkg/utils"

// PageRequest is an offset pagination request, page numbers start at 1.
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request to page >= 1 and 1 <= size <= maxSize,
// using defaultSize for an unset size.
func (p PageRequest) Normalize(defaultSize, maxSize int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if maxSize > 0 && p.PageSize > maxSize {
		p.PageSize = maxSize
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of results.
type Page[T any] struct {
	Data      []T `json:"data"`
	Total     int `json:"total"`
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	PageCount int `json:"page_count"`
}

// NewPage wraps data with the pagination metadata of req.
func NewPage[T any](data []T, total int, req PageRequest) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Data:      data,
		Total:     total,
		Page:      req.Page,
		PageSize:  req.PageSize,
		PageCount: utils.PageCount(total, req.PageSize),
	}
}
