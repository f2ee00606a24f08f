package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/pulse-analytics/pkg/config"
	"github.com/angelmondragon/pulse-analytics/pkg/db"
	"github.com/angelmondragon/pulse-analytics/pkg/logger"
)

// MaybeRunDev brings the aggregate tables up to date on start when running in
// dev with PULSE_AUTO_MIGRATE set. Production schemas are loaded out of band.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.App.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": Dir})
	logg.Info(ctx, "applying aggregate table migrations")
	if err := Run(ctx, sqlDB, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "aggregate table migrations applied")
	return nil
}
