// Package config loads the matching engine's process configuration
// from environment variables, the options spec.md §6 names plus the
// Kafka fan-out this engine's domain stack adds.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the full set of options this engine's process recognizes.
type Config struct {
	Product string `env:"PRODUCT,required"`

	ClientIP   string `env:"CLIENT_IP" envDefault:"0.0.0.0"`
	ClientPort int    `env:"CLIENT_PORT,required"`

	FeedIP   string `env:"FEED_IP,required"`
	FeedPort int    `env:"FEED_PORT,required"`

	NoRecover bool   `env:"NO_RECOVER" envDefault:"false"`
	LogDir    string `env:"LOG_DIR" envDefault:"."`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	Kafka KafkaConfig `envPrefix:"KAFKA_"`
}

// KafkaConfig configures the Broadcaster's producer.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS,required"`
	Topic   string   `env:"TOPIC,required"`
}

// Load parses Config from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
