package migration

import (
	"github.com/smallbiznis/returnsight/internal/config"
	predictiondomain "github.com/smallbiznis/returnsight/internal/prediction/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		// sqlite and mysql deployments migrate through gorm.
		return conn.AutoMigrate(&predictiondomain.Prediction{})
	}),
)
