package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pulse-analytics/api/validators"
	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	pulse "github.com/angelmondragon/pulse-analytics/internal/pulse/types"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
)

const (
	maxYear      = 9999
	maxStateLen  = 100
	maxMetricLen = 32
)

// resolveSelection reads ?year=&quarter=&state=&metric=. Missing values stay
// zero so the service can pick its defaults.
func resolveSelection(r *http.Request) (types.Selection, error) {
	q := validators.Query(r)
	sel := types.Selection{
		Period: pulse.Period{
			Year:    q.Int("year", 0, 0, maxYear),
			Quarter: q.Int("quarter", 0, 0, 4),
		},
		State:  q.String("state", maxStateLen),
		Metric: pulse.Metric(q.String("metric", maxMetricLen)),
	}
	if sel.Metric != "" && !sel.Metric.IsValid() {
		q.Reject("metric", "is not supported")
	}
	if err := q.Err(); err != nil {
		return types.Selection{}, err
	}
	if err := sel.Period.Validate(); err != nil {
		return types.Selection{}, err
	}
	return sel, nil
}

func resolveTable(r *http.Request) (pulse.TableID, error) {
	table, ok := pulse.ParseTableID(chi.URLParam(r, "table"))
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "table not found")
	}
	return table, nil
}
