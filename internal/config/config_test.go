package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort(), cfg.Port)
	assert.Equal(t, DefaultDB().Host, cfg.DB.Host)
	assert.Equal(t, DefaultOutbox().BatchSize, cfg.Outbox.BatchSize)
	assert.Equal(t, DefaultGateways().Retry.MaxAttempts, cfg.Gateways.Retry.MaxAttempts)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_PortFlag(t *testing.T) {
	cfg, err := load([]string{"--port", "9090"})
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_InvalidPort(t *testing.T) {
	_, err := load([]string{"--port", "70000"})
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("RATE_LIMIT", "5")

	cfg, err := load(nil)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, 5, cfg.RateLimit.Limit)
}

func TestDB_DSN(t *testing.T) {
	dsn := DB{Host: "h", Port: "5433", User: "u", Pass: "p", Name: "d"}.DSN()
	assert.Equal(t, "postgres://u:p@h:5433/d?sslmode=disable", dsn)
}
