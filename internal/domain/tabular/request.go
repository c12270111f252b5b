package tabular

import "tabula/internal/domain/filter"

// QueryRequest carries the caller-supplied parameters for one logical read.
// It is built by the transport layer and immutable once built.
type QueryRequest struct {
	Page      int           `json:"page"`
	Size      int           `json:"size"`
	Filters   []filter.Item `json:"filters"`
	SortBy    string        `json:"sort_by"`
	SortOrder string        `json:"sort_order"`
}

// Apply runs the standard filter -> sort -> paginate pipeline on s.
func (r QueryRequest) Apply(s Source) Source {
	return s.Filter(r.Filters).
		Sort(r.SortBy, r.SortOrder).
		Paginate(r.Page, r.Size)
}

// LastPage computes the page count for a total row count. Returns 0 when the
// request carries no page size.
func (r QueryRequest) LastPage(total int64) int64 {
	if r.Size <= 0 {
		return 0
	}
	size := int64(r.Size)
	return (total + size - 1) / size
}
