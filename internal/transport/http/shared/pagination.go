package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Skip int
	Take int
}

// ParsePagination reads the grid's skip/take query params with bounds.
func ParsePagination(r *http.Request, defaultTake, maxTake int) Pagination {
	take := defaultTake
	skip := 0
	if raw := r.URL.Query().Get("take"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			take = v
		}
	}
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			skip = v
		}
	}
	if maxTake > 0 && take > maxTake {
		take = maxTake
	}
	return Pagination{Skip: skip, Take: take}
}
