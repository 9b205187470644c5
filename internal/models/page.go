package models

// Page is the paginated list envelope.
type Page[T any] struct {
	PagesCount int   `json:"pagesCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	Items      []T   `json:"items"`
}

// NewPage builds an envelope; items is never encoded as null.
func NewPage[T any](items []T, page, pageSize int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{
		PagesCount: pages,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		Items:      items,
	}
}

// MapPage converts the items of a page.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return Page[U]{
		PagesCount: p.PagesCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		Items:      out,
	}
}

// Pagination defaults and limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageQuery carries the paging and sorting parameters of a list request.
// SortBy is a wire field name; repositories map it onto a whitelisted column.
type PageQuery struct {
	PageNumber    int
	PageSize      int
	SortBy        string
	SortDirection string
}

// Normalize fills defaults and clamps out-of-range values.
func (q PageQuery) Normalize() PageQuery {
	if q.PageNumber < 1 {
		q.PageNumber = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortDirection != "asc" {
		q.SortDirection = "desc"
	}
	return q
}

// Offset is the number of rows to skip.
func (q PageQuery) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}
