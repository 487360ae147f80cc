package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any paginated query can request.
	MaxLimit = 100
)

// Params holds page/limit inputs from controllers. A zero value means the
// caller wants the whole, unpaginated collection.
type Params struct {
	Page  int
	Limit int
}

// Enabled reports whether the caller asked for a paginated response.
func (p Params) Enabled() bool {
	return p.Page > 0 && p.Limit > 0
}

// Normalize clamps the limit and floors the page at one.
func (p Params) Normalize() Params {
	out := p
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	return out
}

// Offset converts the normalized page into a row offset.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Meta describes a page of results.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta derives the page metadata for a total row count.
func NewMeta(params Params, total int64) Meta {
	n := params.Normalize()
	pages := int(total) / n.Limit
	if int(total)%n.Limit != 0 {
		pages++
	}
	return Meta{Total: total, Page: n.Page, TotalPages: pages}
}
