package order

import (
	"github.com/bloomloft/garland/internal/order/repository"
	"github.com/bloomloft/garland/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
