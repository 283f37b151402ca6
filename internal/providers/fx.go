package providers

import (
	"go.uber.org/fx"

	"github.com/bloomloft/garland/internal/providers/email"
	"github.com/bloomloft/garland/internal/providers/slack"
)

var Module = fx.Module("providers",
	email.Module,
	slack.Module,
)
