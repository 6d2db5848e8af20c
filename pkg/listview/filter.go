// Package listview is the pure filtering and pagination engine behind the
// order and inventory list views. Everything here is a function of its
// inputs; the engine never talks to the record store and always operates on
// the full fetched collection, so a filter change can surface records from
// any page.
package listview

import (
	"sort"
	"strings"

	"github.com/hmkim/ordertrack/pkg/models"
)

// All is the sentinel dimension value that disables the exact-match filter.
const All = "all"

// Visibility selects records by their soft-delete state. The UI only ever
// offers active and deleted; VisibilityAll exists for callers that need the
// unfiltered collection.
type Visibility int

const (
	VisibilityActive Visibility = iota
	VisibilityDeleted
	VisibilityAll
)

// Query is one combined filter. Active criteria are ANDed together.
type Query struct {
	// Search is matched case-insensitively as a substring against each of
	// the record's search fields; a record matches when any field contains
	// the term. Empty means match-all.
	Search string
	// Dimension names the exact-match field (e.g. models.DimensionLocation);
	// empty means no dimension filter exists for this view.
	Dimension string
	// DimensionValue is the required value; All disables the filter.
	DimensionValue string
	Visibility     Visibility
}

// Filter returns the records of the full collection matching q, preserving
// the input order.
func Filter[T models.Record](records []T, q Query) []T {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]T, 0, len(records))
	for _, r := range records {
		if !matchVisibility(r, q.Visibility) {
			continue
		}
		if q.Dimension != "" && q.DimensionValue != All && q.DimensionValue != "" {
			if r.DimensionValue(q.Dimension) != q.DimensionValue {
				continue
			}
		}
		if term != "" && !matchSearch(r, term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchVisibility(r models.Record, v Visibility) bool {
	switch v {
	case VisibilityActive:
		return r.Active()
	case VisibilityDeleted:
		return !r.Active()
	default:
		return true
	}
}

func matchSearch(r models.Record, lowerTerm string) bool {
	for _, f := range r.SearchFields() {
		if strings.Contains(strings.ToLower(f), lowerTerm) {
			return true
		}
	}
	return false
}

// DimensionValues collects the sorted distinct non-empty values of dim
// across the whole collection, for populating the filter dropdown.
func DimensionValues[T models.Record](records []T, dim string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if v := r.DimensionValue(dim); v != "" {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// State is the filter and paging state of one list view. Mutating any
// criterion resets the page index to the first page, so the visible window
// always starts from the top of a changed result set.
type State struct {
	Query   Query
	Page    int
	PerPage int
}

// NewState returns the default state: active records, no search, dimension
// filter disabled, first page of ten.
func NewState(dimension string) State {
	return State{
		Query: Query{
			Dimension:      dimension,
			DimensionValue: All,
			Visibility:     VisibilityActive,
		},
		PerPage: DefaultPerPage,
	}
}

func (s *State) SetSearch(term string) {
	s.Query.Search = term
	s.Page = 0
}

func (s *State) SetDimensionValue(value string) {
	s.Query.DimensionValue = value
	s.Page = 0
}

func (s *State) SetVisibility(v Visibility) {
	s.Query.Visibility = v
	s.Page = 0
}

func (s *State) SetPerPage(n int) {
	if n <= 0 {
		n = DefaultPerPage
	}
	s.PerPage = n
	s.Page = 0
}

// SetPage moves to a page without touching the filter criteria. Out-of-range
// targets are ignored rather than clamped so an inert pager placeholder can
// never cause a jump.
func (s *State) SetPage(page, pageCount int) {
	if page < 0 || page > pageCount-1 {
		return
	}
	s.Page = page
}
