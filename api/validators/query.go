package validators

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

// QueryParams reads URL query parameters and collects every problem, so one
// response lists all invalid fields. Missing parameters take their default.
type QueryParams struct {
	values   url.Values
	problems map[string]string
}

func Query(r *http.Request) *QueryParams {
	return &QueryParams{values: r.URL.Query(), problems: map[string]string{}}
}

func (q *QueryParams) Int(key string, defaultVal, min, max int) int {
	raw := strings.TrimSpace(q.values.Get(key))
	if raw == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		q.problems[key] = "must be numeric"
		return defaultVal
	}
	if value < min || value > max {
		q.problems[key] = fmt.Sprintf("must be between %d and %d", min, max)
		return defaultVal
	}
	return value
}

// String returns the trimmed value of key. Longer values than maxLen are
// rejected; maxLen 0 means unbounded.
func (q *QueryParams) String(key string, maxLen int) string {
	value := strings.TrimSpace(q.values.Get(key))
	if maxLen > 0 && len(value) > maxLen {
		q.problems[key] = fmt.Sprintf("must be at most %d characters", maxLen)
		return ""
	}
	return value
}

// Reject records a problem found by the caller's own checks.
func (q *QueryParams) Reject(key, problem string) {
	q.problems[key] = problem
}

// Err reports the collected problems as one validation error.
func (q *QueryParams) Err() error {
	if len(q.problems) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameters").WithDetails(q.problems)
}
