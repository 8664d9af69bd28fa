package shared

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter carries the paging and ordering every list query accepts.
// Repositories validate OrderBy against their own whitelist.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	// Filters holds repository specific switches such as "active" or "in_stock"
	Filters map[string]any
}

// NewPage returns a filter for the requested page with defaults applied.
// Page starts at 1; an out of range page size falls back to DefaultPageSize.
func NewPage(page, pageSize int, orderBy, orderDir string) Filter {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Filters:  make(map[string]any),
	}
}

// WithSearch returns a copy of f matching the free text term
func (f Filter) WithSearch(term string) Filter {
	f.Search = term
	return f
}

// Offset is the number of rows skipped before the page
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
