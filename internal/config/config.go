package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration. Everything is resolved once at
// process start; services receive it by injection and never read the
// environment themselves.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	DBType    string
	DBHost    string
	DBPort    string
	DBName    string
	DBSSLMode string

	// Privileged credential. When present the store runs true
	// transactions; when absent we fall back to the pooled role.
	DBServiceUser     string
	DBServicePassword string

	// Restricted, statement-pooled credential. Multi-statement
	// transactions are not guaranteed through the pooler.
	DBPooledUser     string
	DBPooledPassword string

	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Gateway GatewayConfig
	Email   EmailConfig
	Slack   SlackConfig
	Redis   RedisConfig

	OrderNumberPrefix string

	// NOTIFY_TIMEOUT_SECONDS bounds each outbound notification attempt.
	NotifyTimeoutSeconds int

	// ADMIN_API_KEYS is a comma-separated list of role:key pairs,
	// e.g. "admin:humusonlu-gizli-anahtar,support:okuma-anahtari".
	AdminAPIKeys []AdminAPIKey
}

// GatewayConfig carries the payment gateway merchant credentials used to
// verify callback signatures.
type GatewayConfig struct {
	MerchantID   string
	MerchantKey  string
	MerchantSalt string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

type SlackConfig struct {
	WebhookURL string
	Channel    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Token bucket for the public order-poll endpoint.
	PollRate  float64
	PollBurst int
}

type AdminAPIKey struct {
	Role string
	Key  string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "garland"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:    getenv("DATABASE_TYPE", "postgres"),
		DBHost:    getenv("DATABASE_HOST", "localhost"),
		DBPort:    getenv("DATABASE_PORT", "5432"),
		DBName:    getenv("DATABASE_NAME", "garland"),
		DBSSLMode: getenv("DATABASE_SSLMODE", "disable"),

		DBServiceUser:     strings.TrimSpace(getenv("DATABASE_SERVICE_USER", "")),
		DBServicePassword: strings.TrimSpace(getenv("DATABASE_SERVICE_PASSWORD", "")),
		DBPooledUser:      getenv("DATABASE_POOLED_USER", "garland_web"),
		DBPooledPassword:  getenv("DATABASE_POOLED_PASSWORD", ""),

		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),

		Gateway: GatewayConfig{
			MerchantID:   strings.TrimSpace(getenv("GATEWAY_MERCHANT_ID", "")),
			MerchantKey:  strings.TrimSpace(getenv("GATEWAY_MERCHANT_KEY", "")),
			MerchantSalt: strings.TrimSpace(getenv("GATEWAY_MERCHANT_SALT", "")),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     int(getenvInt64("SMTP_PORT", 587)),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "siparis@bloomloft.example"),
		},
		Slack: SlackConfig{
			WebhookURL: strings.TrimSpace(getenv("SLACK_WEBHOOK_URL", "")),
			Channel:    getenv("SLACK_CHANNEL", "#orders"),
		},
		Redis: RedisConfig{
			Addr:      getenv("REDIS_ADDR", ""),
			Password:  getenv("REDIS_PASSWORD", ""),
			DB:        int(getenvInt64("REDIS_DB", 0)),
			PollRate:  getenvFloat("ORDER_POLL_RATE", 5),
			PollBurst: int(getenvInt64("ORDER_POLL_BURST", 10)),
		},

		OrderNumberPrefix:    getenv("ORDER_NUMBER_PREFIX", "CD"),
		NotifyTimeoutSeconds: int(getenvInt64("NOTIFY_TIMEOUT_SECONDS", 10)),
		AdminAPIKeys:         parseAdminAPIKeys(getenv("ADMIN_API_KEYS", "")),
	}

	return cfg
}

// HasServiceCredential reports whether the privileged store credential is
// configured. It decides which atomic-runner implementation is used.
func (c Config) HasServiceCredential() bool {
	return c.DBServiceUser != "" && c.DBServicePassword != ""
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func parseAdminAPIKeys(raw string) []AdminAPIKey {
	parts := strings.Split(raw, ",")
	out := make([]AdminAPIKey, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, key, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		role = strings.ToLower(strings.TrimSpace(role))
		key = strings.TrimSpace(key)
		if role == "" || key == "" {
			continue
		}
		out = append(out, AdminAPIKey{Role: role, Key: key})
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
