package migration

import (
	"fmt"
	"strings"

	"github.com/railzwaylabs/mediation/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		driver := strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
		if driver != "" && driver != "postgres" && driver != "postgresql" {
			return fmt.Errorf("migrations support postgres only, got driver %q", cfg.Database.Driver)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB, log.Named("migration"))
	}),
)
