package repositories

import "spilled-server/internal/schemas"

// DefaultPageLimit is used when a caller does not request a page size.
const DefaultPageLimit = 20

// MaxPageLimit caps the page size of every paginated query.
const MaxPageLimit = 100

// PageParams is a normalized page request. Construct it through
// NormalizePage so the invariants hold: Page >= 1, 1 <= Limit <= MaxPageLimit
// and Offset() never negative.
type PageParams struct {
	Page  int
	Limit int
}

// NormalizePage clamps raw page and limit values. Pages below 1 become 1 and
// the limit is clamped to [1, MaxPageLimit], falling back to defaultLimit
// when no usable value was given.
func NormalizePage(page, limit, defaultLimit int) PageParams {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageParams{Page: page, Limit: limit}
}

// Offset returns the row offset of the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginated wraps one page of records with its pagination metadata.
type Paginated[T any] struct {
	Records    []T
	Pagination schemas.Pagination
}

// NewPaginated builds the result envelope for a page. hasNext holds exactly
// when page*limit < total and hasPrev exactly when page > 1.
func NewPaginated[T any](records []T, params PageParams, total int) Paginated[T] {
	if records == nil {
		records = []T{}
	}
	return Paginated[T]{
		Records: records,
		Pagination: schemas.Pagination{
			Page:    params.Page,
			Limit:   params.Limit,
			Records: total,
			HasNext: params.Page*params.Limit < total,
			HasPrev: params.Page > 1,
		},
	}
}
