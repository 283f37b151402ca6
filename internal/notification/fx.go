package notification

import (
	"go.uber.org/fx"

	"github.com/bloomloft/garland/internal/notification/repository"
	"github.com/bloomloft/garland/internal/notification/service"
)

var Module = fx.Module("notification.dispatcher",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
