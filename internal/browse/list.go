package browse

import (
	"github.com/billmal071/cosmere/internal/cosmere"
)

// DefaultPageSize is used when a list is created without one.
const DefaultPageSize = 20

// ListRequest is a list load handed to the caller to perform.
type ListRequest struct {
	Token    Token
	Resource cosmere.Resource
	Page     int
	Options  cosmere.ListOptions
}

// ListState is the state of one filtered, paginated entity list.
type ListState[T cosmere.Entity] struct {
	Resource cosmere.Resource
	Filters  cosmere.Filters
	Page     int
	PageSize int

	Items   []T
	Total   int
	HasNext bool
	HasPrev bool
	Loading bool
	Err     error

	loaded  bool
	pending int
	seq     Sequencer
}

// NewListState returns an unloaded list on page 1.
func NewListState[T cosmere.Entity](r cosmere.Resource, pageSize int) *ListState[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ListState[T]{
		Resource: r,
		Filters:  cosmere.Filters{},
		Page:     1,
		PageSize: pageSize,
	}
}

// Load merges filters into the current set and requests page. Values set to
// "" remove a filter. Page moves to the requested page only once the load
// succeeds.
func (s *ListState[T]) Load(filters cosmere.Filters, page int) ListRequest {
	if page < 1 {
		page = 1
	}
	s.Filters = s.Filters.Merge(filters)
	s.pending = page
	s.Loading = true
	return ListRequest{
		Token:    s.seq.Next(),
		Resource: s.Resource,
		Page:     page,
		Options:  s.options(page),
	}
}

func (s *ListState[T]) options(page int) cosmere.ListOptions {
	return cosmere.ListOptions{
		Filters: s.Filters.Clone(),
		Skip:    (page - 1) * s.PageSize,
		Limit:   s.PageSize,
	}
}

// Reload requests the current page again with the current filters.
func (s *ListState[T]) Reload() ListRequest { return s.Load(nil, s.Page) }

// SetFilter changes one filter and returns to page 1.
func (s *ListState[T]) SetFilter(key, value string) ListRequest {
	return s.Load(cosmere.Filters{key: value}, 1)
}

// SetFilters changes several filters at once and returns to page 1.
func (s *ListState[T]) SetFilters(f cosmere.Filters) ListRequest { return s.Load(f, 1) }

// Search sets the free-text filter and returns to page 1.
func (s *ListState[T]) Search(query string) ListRequest { return s.SetFilter("search", query) }

// ClearFilters drops every filter and returns to page 1.
func (s *ListState[T]) ClearFilters() ListRequest {
	s.Filters = cosmere.Filters{}
	return s.Load(nil, 1)
}

// CanNext reports whether the next-page control is enabled.
func (s *ListState[T]) CanNext() bool { return s.HasNext }

// CanPrev reports whether the previous-page control is enabled.
func (s *ListState[T]) CanPrev() bool { return s.HasPrev }

// Next requests the following page. It is refused when the server said there
// is none.
func (s *ListState[T]) Next() (ListRequest, bool) {
	if !s.CanNext() {
		return ListRequest{}, false
	}
	return s.Load(nil, s.Page+1), true
}

// Prev requests the preceding page.
func (s *ListState[T]) Prev() (ListRequest, bool) {
	if !s.CanPrev() {
		return ListRequest{}, false
	}
	return s.Load(nil, s.Page-1), true
}

// Apply stores the result of the request tagged t. Stale results are dropped
// and reported as false. A failure keeps the previous items and page.
func (s *ListState[T]) Apply(t Token, page *cosmere.Page[T], err error) bool {
	if !s.seq.Latest(t) {
		return false
	}
	s.Loading = false
	if err != nil {
		s.Err = err
		return true
	}
	s.Err = nil
	s.loaded = true
	s.Page = s.pending
	if page == nil {
		page = &cosmere.Page[T]{}
	}
	s.Items = page.Items
	if s.Items == nil {
		s.Items = []T{}
	}
	s.Total = page.Total
	s.HasNext = page.HasNext
	s.HasPrev = page.HasPrev
	return true
}

// Cancel abandons the request in flight, if any.
func (s *ListState[T]) Cancel() {
	s.seq.Invalidate()
	s.Loading = false
}

// Loaded reports whether a load has completed successfully.
func (s *ListState[T]) Loaded() bool { return s.loaded }

// Empty reports the "no results" state: a completed load with no items. It is
// never true while an error is shown.
func (s *ListState[T]) Empty() bool {
	return s.loaded && !s.Loading && s.Err == nil && len(s.Items) == 0
}

// Remove drops the entity id from the cached items.
func (s *ListState[T]) Remove(id string) bool {
	for i, it := range s.Items {
		if it.EntityID() == id {
			s.Items = append(s.Items[:i:i], s.Items[i+1:]...)
			if s.Total > 0 {
				s.Total--
			}
			return true
		}
	}
	return false
}

// Contains reports whether id is among the cached items.
func (s *ListState[T]) Contains(id string) bool {
	for _, it := range s.Items {
		if it.EntityID() == id {
			return true
		}
	}
	return false
}

// PageCount is the number of pages the server total spans.
func (s *ListState[T]) PageCount() int {
	if s.Total <= 0 {
		return 1
	}
	return (s.Total + s.PageSize - 1) / s.PageSize
}
