package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// NotificationConfig carries the human-facing copy and routing for order
// notifications. It lives in notifications.yml so the shop staff can adjust
// wording and recipients without a redeploy.
type NotificationConfig struct {
	StoreName         string   `mapstructure:"storeName"`
	CustomerSubject   string   `mapstructure:"customerSubject"`
	StaffSubject      string   `mapstructure:"staffSubject"`
	StaffRecipients   []string `mapstructure:"staffRecipients"`
	ChatChannel       string   `mapstructure:"chatChannel"`
	ChatEnabled       bool     `mapstructure:"chatEnabled"`
	OrderTrackingURL  string   `mapstructure:"orderTrackingUrl"`
	SupportReplyTo    string   `mapstructure:"supportReplyTo"`
	IncludeTestOrders bool     `mapstructure:"includeTestOrders"`
	CustomerGreeting  string   `mapstructure:"customerGreeting"`
	CustomerSignature string   `mapstructure:"customerSignature"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		StoreName:         "Bloomloft",
		CustomerSubject:   "Siparişiniz alındı: {{.OrderNumber}}",
		StaffSubject:      "Yeni sipariş: {{.OrderNumber}}",
		StaffRecipients:   []string{"atolye@bloomloft.example"},
		ChatChannel:       "#orders",
		ChatEnabled:       true,
		SupportReplyTo:    "destek@bloomloft.example",
		IncludeTestOrders: false,
		CustomerGreeting:  "Merhaba",
		CustomerSignature: "Bloomloft Çiçek Atölyesi",
	}
}

// NotificationConfigHolder exposes the current notification settings and
// swaps them atomically on file change.
type NotificationConfigHolder struct {
	current atomic.Value // holds NotificationConfig
}

func NewNotificationConfigHolder() (*NotificationConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("notifications")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/garland/config")
	v.AddConfigPath("/etc/garland")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GARLAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg := DefaultNotificationConfig()
	if fileFound {
		if err := v.UnmarshalKey("notifications", &cfg); err != nil {
			return nil, err
		}
		if err := validateNotificationConfig(cfg); err != nil {
			return nil, err
		}
	}

	holder := &NotificationConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated := DefaultNotificationConfig()
			if err := v.UnmarshalKey("notifications", &updated); err != nil {
				log.Printf("[notification-config] reload failed: %v", err)
				return
			}
			if err := validateNotificationConfig(updated); err != nil {
				log.Printf("[notification-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[notification-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *NotificationConfigHolder) Get() NotificationConfig {
	return h.current.Load().(NotificationConfig)
}

// Store replaces the current settings. Tests use it to inject fixtures.
func (h *NotificationConfigHolder) Store(cfg NotificationConfig) {
	h.current.Store(cfg)
}

func validateNotificationConfig(cfg NotificationConfig) error {
	if strings.TrimSpace(cfg.StoreName) == "" {
		return errors.New("notifications.storeName cannot be empty")
	}
	if len(cfg.StaffRecipients) == 0 {
		return errors.New("notifications.staffRecipients cannot be empty")
	}
	return nil
}
