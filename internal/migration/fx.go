package migration

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, log *zap.Logger) error {
		if name := conn.Dialector.Name(); name != "postgres" {
			return fmt.Errorf("migrations require postgres, got %s", name)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Named("migration").Info("schema migrated and activated")
		return nil
	}),
)
