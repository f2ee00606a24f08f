package analytics

import (
	"net/http"

	"github.com/angelmondragon/pulse-analytics/api/responses"
	"github.com/angelmondragon/pulse-analytics/internal/analytics"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

func ListTables(service analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, service.Tables())
	}
}

func TablePeriods(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		table, err := resolveTable(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		options, err := service.Periods(ctx, table)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, options)
	}
}
