package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/pulse-analytics/api/responses"
	"github.com/angelmondragon/pulse-analytics/pkg/config"
	pkgerrors "github.com/angelmondragon/pulse-analytics/pkg/errors"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

const envHeader = "X-Pulse-Env"

// readyTimeout bounds each dependency ping.
const readyTimeout = 2 * time.Second

// Pinger is any dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency. A nil pinger is reported as
// disabled rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := make(map[string]string, len(deps))
		failed := false
		for name, dep := range deps {
			if dep == nil {
				checks[name] = "disabled"
				continue
			}
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			err := dep.Ping(ctx)
			cancel()
			if err != nil {
				failed = true
				checks[name] = "unavailable"
				logg.Warn(logg.WithFields(r.Context(), map[string]any{"dependency": name, "error": err.Error()}), "readiness check failed")
				continue
			}
			checks[name] = "ok"
		}

		if failed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(map[string]any{"checks": checks}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
