package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pulse-analytics/api/responses"
	"github.com/angelmondragon/pulse-analytics/api/validators"
	"github.com/angelmondragon/pulse-analytics/internal/analytics"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

func ListFacts(service analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, service.Facts())
	}
}

func FactDetail(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := validators.Query(r)
		year := q.Int("year", 0, 0, maxYear)
		if err := q.Err(); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		view, err := service.Fact(ctx, chi.URLParam(r, "fact"), year)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
