package analytics

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pulse-analytics/api/responses"
	"github.com/angelmondragon/pulse-analytics/internal/analytics"
	"github.com/angelmondragon/pulse-analytics/internal/analytics/types"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

func TransactionsDashboard(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return dashboard(logg, func(ctx context.Context, sel types.Selection) (any, error) {
		return service.Transactions(ctx, sel)
	})
}

func UsersDashboard(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return dashboard(logg, func(ctx context.Context, sel types.Selection) (any, error) {
		return service.Users(ctx, sel)
	})
}

func GeoDashboard(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return dashboard(logg, func(ctx context.Context, sel types.Selection) (any, error) {
		return service.Geo(ctx, sel)
	})
}

func dashboard(logg *logger.Logger, view func(context.Context, types.Selection) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sel, err := resolveSelection(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := view(ctx, sel)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
