package slack

import (
	"strings"

	"go.uber.org/fx"

	"github.com/bloomloft/garland/internal/config"
)

var Module = fx.Module("providers.slack",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if strings.TrimSpace(cfg.Slack.WebhookURL) == "" {
		return &NoOpProvider{}
	}
	return NewWebhook(cfg.Slack.WebhookURL)
}
