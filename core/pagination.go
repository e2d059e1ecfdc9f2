package core

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageQuery holds the requested page number (1-based) and page size.
type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// Clean applies the defaults and bounds to the query.
func (pq *PageQuery) Clean() {
	if pq.Page < 1 {
		pq.Page = 1
	}
	if pq.Limit < 1 {
		pq.Limit = DefaultPageLimit
	}
	if pq.Limit > MaxPageLimit {
		pq.Limit = MaxPageLimit
	}
}

// Skip returns the number of documents preceding the page.
func (pq PageQuery) Skip() int {
	if pq.Page < 1 {
		return 0
	}
	return (pq.Page - 1) * pq.Limit
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Docs        []T   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
	NextPage    *int  `json:"nextPage"`
	PrevPage    *int  `json:"prevPage"`
}

func NewPage[T any](docs []T, total int64, pq PageQuery) Page[T] {
	pq.Clean()
	if docs == nil {
		docs = []T{}
	}
	totalPages := int((total + int64(pq.Limit) - 1) / int64(pq.Limit))
	if totalPages == 0 {
		totalPages = 1
	}
	p := Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       pq.Limit,
		Page:        pq.Page,
		TotalPages:  totalPages,
		HasPrevPage: pq.Page > 1,
		HasNextPage: pq.Page < totalPages,
	}
	if p.HasPrevPage {
		prev := pq.Page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := pq.Page + 1
		p.NextPage = &next
	}
	return p
}

// PaginateSlice returns the requested page of an in-memory slice.
func PaginateSlice[T any](items []T, pq PageQuery) Page[T] {
	pq.Clean()
	total := len(items)
	start := pq.Skip()
	if start > total {
		start = total
	}
	end := start + pq.Limit
	if end > total {
		end = total
	}
	docs := make([]T, end-start)
	copy(docs, items[start:end])
	return NewPage(docs, int64(total), pq)
}
