package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/bloomloft/garland/internal/authorization"
	"github.com/bloomloft/garland/internal/checkout"
	"github.com/bloomloft/garland/internal/clock"
	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/logger"
	"github.com/bloomloft/garland/internal/migration"
	"github.com/bloomloft/garland/internal/notification"
	"github.com/bloomloft/garland/internal/observability/metrics"
	"github.com/bloomloft/garland/internal/order"
	"github.com/bloomloft/garland/internal/payment"
	"github.com/bloomloft/garland/internal/providers"
	"github.com/bloomloft/garland/internal/ratelimit"
	"github.com/bloomloft/garland/internal/server"
	"github.com/bloomloft/garland/internal/storage"
	"github.com/bloomloft/garland/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		ratelimit.Module,
		storage.Module,
		authorization.Module,
		providers.Module,

		// Order fulfillment domains
		checkout.Module,
		order.Module,
		payment.Module,
		notification.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
