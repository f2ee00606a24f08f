package api

import (
	"net/http"

	"github.com/angelmondragon/pulse-analytics/pkg/config"
)

// NewServer builds the HTTP server cmd/api runs, with timeouts from config.
func NewServer(cfg *config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       2 * cfg.HTTP.WriteTimeout,
	}
}
