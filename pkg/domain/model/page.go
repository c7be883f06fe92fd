package model

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (Page-1)*PageSize well inside int range
	MaxPage = math.MaxInt32
)

// PageRequest selects a 1-based page of results
type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize clamps the request into the accepted range
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the number of items to skip
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the number of items to return
func (p PageRequest) Limit() int {
	return p.Normalize().PageSize
}

// Page is one page of an ordered result set
type Page[T any] struct {
	Items      []T
	TotalItems int
	TotalPages int
	Page       int
	PageSize   int
}

// NewPage assembles a page from the items of the requested window and the total count
func NewPage[T any](items []T, total int, req PageRequest) *Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		TotalItems: total,
		TotalPages: (total + req.PageSize - 1) / req.PageSize,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
}

// Window returns the sub-slice of items selected by the page request
func Window[T any](items []T, req PageRequest) []T {
	offset := req.Offset()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + req.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
