package types

import (
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/samber/lo"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// PageParams selects a window of a listing
type PageParams struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// Normalize applies the default limit and rejects out of range values
func (p *PageParams) Normalize() error {
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit < 0 || p.Limit > MaxPageLimit || p.Offset < 0 {
		return ierr.NewError("invalid pagination").
			WithHintf("limit must be between 1 and %d and offset must not be negative", MaxPageLimit).
			WithReportableDetails(map[string]any{
				"limit":  p.Limit,
				"offset": p.Offset,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaginationResponse represents standardized pagination metadata
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListResponse represents a paginated response with items
type ListResponse[T any] struct {
	Items      []T                `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
}

// Paginate cuts the page out of items, which must already be in listing order
func Paginate[T any](items []T, page PageParams) ListResponse[T] {
	window := lo.Subset(items, page.Offset, uint(page.Limit))
	if window == nil {
		window = []T{}
	}
	return ListResponse[T]{
		Items: window,
		Pagination: PaginationResponse{
			Total:  len(items),
			Limit:  page.Limit,
			Offset: page.Offset,
		},
	}
}
