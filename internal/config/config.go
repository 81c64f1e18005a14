// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`

	// AllowedOrigins is a comma separated list for CORS; empty disables
	// cross-origin access.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// AuthJWTSecret enables bearer-token verification on mutating routes
	// when set. Empty leaves the API open, which is the default for local
	// development.
	AuthJWTSecret string `env:"AUTH_JWT_SECRET"`

	// KafkaBroker enables the notification publisher when set.
	KafkaBroker       string `env:"KAFKA_BROKER"`
	NotificationTopic string `env:"NOTIFICATION_TOPIC" envDefault:"inventory.notifications"`

	// StockMonitorInterval is the period of the background status sweep.
	// Zero disables the sweep.
	StockMonitorInterval time.Duration `env:"STOCK_MONITOR_INTERVAL" envDefault:"10m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
