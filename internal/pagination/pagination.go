package pagination

import "strings"

// Params carries the page request every list endpoint accepts. Filters are
// optional; an empty value means "no filter".
type Params struct {
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
	Search string `json:"search,omitempty"`
	SiteID string `json:"site_id,omitempty"`
}

// Normalize clamps page and limit to the minimum of 1 so a malformed request
// degrades to the first page instead of erroring.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}

// Page is one slice of a filtered collection. Total is the filtered count
// before slicing, so callers can render page controls.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Predicate filters one item. Predicates compose as a conjunction.
type Predicate[T any] func(T) bool

// MatchSearch builds a case-insensitive substring predicate over the field
// extracted by get. An empty term matches everything.
func MatchSearch[T any](term string, get func(T) string) Predicate[T] {
	if term == "" {
		return func(T) bool { return true }
	}
	needle := strings.ToLower(term)
	return func(item T) bool {
		return strings.Contains(strings.ToLower(get(item)), needle)
	}
}

// MatchID builds an exact-match predicate over a foreign-key field. An empty
// id matches everything.
func MatchID[T any](id string, get func(T) string) Predicate[T] {
	if id == "" {
		return func(T) bool { return true }
	}
	return func(item T) bool {
		return get(item) == id
	}
}

// Paginate filters items with the conjunction of predicates and slices the
// result to the requested page. An out-of-range page yields an empty item
// list with Total still reflecting the full filtered count.
func Paginate[T any](items []T, params Params, predicates ...Predicate[T]) Page[T] {
	params = params.Normalize()

	filtered := make([]T, 0, len(items))
	for _, item := range items {
		keep := true
		for _, pred := range predicates {
			if !pred(item) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, item)
		}
	}

	start := (params.Page - 1) * params.Limit
	end := start + params.Limit
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page[T]{
		Items: filtered[start:end],
		Page:  params.Page,
		Limit: params.Limit,
		Total: len(filtered),
	}
}
