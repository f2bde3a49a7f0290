package shared

import (
	"net/http"
	"strconv"
)

// Pagination is a limit/offset window over a list endpoint.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit plus either offset or a 1-based page. Bad
// values fall back to the defaults; limit is capped at maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	p := Pagination{Limit: positiveInt(q.Get("limit"), defaultLimit)}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Offset = v
		}
	} else if page := positiveInt(q.Get("page"), 1); page > 1 {
		p.Offset = (page - 1) * p.Limit
	}
	return p
}

// WriteTotal exposes the unpaged row count so clients can page without a
// second request.
func (p Pagination) WriteTotal(w http.ResponseWriter, total int) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	w.Header().Set("X-Page-Limit", strconv.Itoa(p.Limit))
	w.Header().Set("X-Page-Offset", strconv.Itoa(p.Offset))
}

func positiveInt(raw string, fallback int) int {
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}
