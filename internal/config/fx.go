package config

import "go.uber.org/fx"

// Module resolves process configuration once at startup.
var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewNotificationConfigHolder),
)
