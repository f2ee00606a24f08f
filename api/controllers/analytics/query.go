package analytics

import (
	"net/http"

	"github.com/angelmondragon/pulse-analytics/api/responses"
	"github.com/angelmondragon/pulse-analytics/api/validators"
	"github.com/angelmondragon/pulse-analytics/internal/analytics"
	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

// Query evaluates an ad-hoc aggregation posted as JSON.
func Query(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req types.QueryRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Query(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
