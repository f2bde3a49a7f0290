package shared

import (
	"net/http"
	"strings"
	"time"

	"hrflow/internal/platform/apperror"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

// QueryDate reads an optional date query parameter; absent yields zero.
func QueryDate(r *http.Request, key string) (time.Time, error) {
	parsed, err := ParseDate(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return time.Time{}, apperror.Invalid(key, "must be a valid date in YYYY-MM-DD format")
	}
	return parsed, nil
}
