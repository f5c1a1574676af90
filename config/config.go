// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything needed to stand the realtime client up.
// RedisAddr, when set, selects the Redis pub/sub transport; otherwise the
// websocket broker at BrokerURL is used.
type Config struct {
	// BrokerURL is the websocket broker endpoint.
	BrokerURL string `env:"HIKEMATE_BROKER_URL" envDefault:"ws://localhost:8080/ws"`

	// RedisAddr, when set, switches the broker transport to Redis pub/sub.
	RedisAddr string `env:"HIKEMATE_REDIS_ADDR"`

	// APIBaseURL is the account service used for profile and
	// online-friends snapshots.
	APIBaseURL string `env:"HIKEMATE_API_URL" envDefault:"http://localhost:8080"`

	// Token is the bearer token issued at login.
	Token string `env:"HIKEMATE_TOKEN"`

	// ReconnectDelay is the fixed backoff between broker connection
	// attempts.
	ReconnectDelay time.Duration `env:"HIKEMATE_RECONNECT_DELAY" envDefault:"5s"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `env:"HIKEMATE_LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
