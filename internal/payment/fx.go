package payment

import (
	"go.uber.org/fx"

	"github.com/bloomloft/garland/internal/config"
	"github.com/bloomloft/garland/internal/payment/service"
	"github.com/bloomloft/garland/internal/payment/verifier"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config) *verifier.Verifier {
		return verifier.New(cfg.Gateway)
	}),
	fx.Provide(service.New),
)
