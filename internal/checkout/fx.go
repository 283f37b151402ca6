package checkout

import (
	"github.com/bloomloft/garland/internal/checkout/repository"
	"github.com/bloomloft/garland/internal/checkout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("checkout.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
