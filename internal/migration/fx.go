package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	checkoutdomain "github.com/bloomloft/garland/internal/checkout/domain"
	"github.com/bloomloft/garland/internal/config"
	notificationdomain "github.com/bloomloft/garland/internal/notification/domain"
	orderdomain "github.com/bloomloft/garland/internal/order/domain"
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

		// sqlite and mysql are dev conveniences; the versioned SQL above
		// targets the Postgres deployment.
		return conn.AutoMigrate(
			&checkoutdomain.DraftSession{},
			&orderdomain.Order{},
			&notificationdomain.Record{},
		)
	}),
)
