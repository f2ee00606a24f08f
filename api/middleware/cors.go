package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the dashboard shell read the API from the configured origins.
// The API is read-only apart from ad-hoc query POSTs.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}).Handler
}
