package transport

import (
	"net/http"
	"strconv"

	"github.com/valcriss/sovrane/internal/pagination"
)

const defaultPageLimit = 20

// PaginationParams reads page, limit, search and site_id from the query
// string. Malformed numbers fall back to defaults rather than erroring.
func PaginationParams(r *http.Request) pagination.Params {
	params := pagination.Params{
		Page:   1,
		Limit:  defaultPageLimit,
		Search: r.URL.Query().Get("search"),
		SiteID: r.URL.Query().Get("site_id"),
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			params.Page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			params.Limit = l
		}
	}

	return params
}
