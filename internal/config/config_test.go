package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresProduct(t *testing.T) {
	t.Setenv("CLIENT_PORT", "7000")
	t.Setenv("FEED_IP", "239.0.0.1")
	t.Setenv("FEED_PORT", "7001")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_TOPIC", "matcher.feed")

	_, err := Load()
	require.Error(t, err, "expected an error when PRODUCT is unset")
}

func TestLoadPopulatesFields(t *testing.T) {
	t.Setenv("PRODUCT", "BTC-USD")
	t.Setenv("CLIENT_PORT", "7000")
	t.Setenv("FEED_IP", "239.0.0.1")
	t.Setenv("FEED_PORT", "7001")
	t.Setenv("KAFKA_BROKERS", "localhost:9092,localhost:9093")
	t.Setenv("KAFKA_TOPIC", "matcher.feed")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "BTC-USD", cfg.Product)
	assert.Equal(t, 7000, cfg.ClientPort)
	assert.Equal(t, 7001, cfg.FeedPort)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, cfg.Kafka.Brokers)
	assert.Equal(t, "matcher.feed", cfg.Kafka.Topic)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PRODUCT", "BTC-USD")
	t.Setenv("CLIENT_PORT", "7000")
	t.Setenv("FEED_IP", "239.0.0.1")
	t.Setenv("FEED_PORT", "7001")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_TOPIC", "matcher.feed")

	cases := []struct {
		name string
		env  string
		want string
		get  func(Config) string
	}{
		{"log level", "LOG_LEVEL", "info", func(c Config) string { return c.LogLevel }},
		{"log dir", "LOG_DIR", ".", func(c Config) string { return c.LogDir }},
		{"client ip", "CLIENT_IP", "0.0.0.0", func(c Config) string { return c.ClientIP }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tc.want, tc.get(cfg), "default for %s", tc.env)
		})
	}
}

func TestLoadNoRecoverDefaultsFalse(t *testing.T) {
	t.Setenv("PRODUCT", "BTC-USD")
	t.Setenv("CLIENT_PORT", "7000")
	t.Setenv("FEED_IP", "239.0.0.1")
	t.Setenv("FEED_PORT", "7001")
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_TOPIC", "matcher.feed")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.NoRecover)
}
