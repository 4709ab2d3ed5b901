// Package config centralises configuration parsing for the activities service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures runtime configuration values for the API and the roster consumer.
type Config struct {
	HTTPAddress       string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	MetricsAddress    string        `env:"METRICS_ADDRESS" envDefault:":9102"`
	CatalogPath       string        `env:"CATALOG_PATH"`
	EnforceCapacity   bool          `env:"ENFORCE_CAPACITY" envDefault:"false"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	KafkaBrokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	RosterTopic     string   `env:"ROSTER_TOPIC" envDefault:"activity_roster_events"`
	ConsumerGroupID string   `env:"CONSUMER_GROUP_ID" envDefault:"mergington-roster-consumer"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"25"`
	OutboxCapacity     int           `env:"OUTBOX_CAPACITY" envDefault:"1024"` // Pending events kept before the oldest is dropped.

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads environment variables into Config, applying defaults suited to local dev.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = splitAndTrim(cfg.KafkaBrokers)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.OutboxPollInterval <= 0 {
		return errors.New("OUTBOX_POLL_INTERVAL must be > 0")
	}
	if c.OutboxBatchSize <= 0 {
		return errors.New("OUTBOX_BATCH_SIZE must be > 0")
	}
	if c.OutboxCapacity <= 0 {
		return errors.New("OUTBOX_CAPACITY must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be > 0")
	}
	return nil
}

// PublishingEnabled reports whether roster events should be shipped to Kafka.
func (c Config) PublishingEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func splitAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
