package paginate

import "strings"

const defaultPerPage = 10

// Query describes the list request state a resource store keeps between
// fetches: current page, page size, and free-text search.
type Query struct {
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Search  string `json:"search"`
}

// Normalize clamps the query to usable values.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	return q
}

// Page is a derived slice of a filtered working set plus metadata describing
// its position within the whole. From/To are 1-based and reflect the slice
// actually returned; both are zero when the slice is empty.
type Page[T any] struct {
	Items       []T `json:"items"`
	From        int `json:"from"`
	To          int `json:"to"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

// Slice applies q to an already-filtered set. An out-of-range page yields an
// empty item slice but a still-valid view.
func Slice[T any](items []T, q Query) Page[T] {
	q = q.Normalize()
	total := len(items)
	last := (total + q.PerPage - 1) / q.PerPage

	start := (q.Page - 1) * q.PerPage
	end := start + q.PerPage
	if end > total {
		end = total
	}

	page := Page[T]{
		Total:       total,
		PerPage:     q.PerPage,
		CurrentPage: q.Page,
		LastPage:    last,
	}
	if start >= total {
		page.Items = []T{}
		return page
	}
	page.Items = append([]T{}, items[start:end]...)
	page.From = start + 1
	page.To = end
	return page
}

// Filter returns the subset of items matching search. Filtering happens
// before pagination on every fetch; an empty search returns a copy of the
// whole set.
func Filter[T any](items []T, search string, match func(T, string) bool) []T {
	out := make([]T, 0, len(items))
	if strings.TrimSpace(search) == "" || match == nil {
		return append(out, items...)
	}
	search = strings.ToLower(search)
	for _, item := range items {
		if match(item, search) {
			out = append(out, item)
		}
	}
	return out
}

// MatchFold reports whether any field contains search, case-insensitively.
// Callers pass search already lower-cased (as Filter does).
func MatchFold(search string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
