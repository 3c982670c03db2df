package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores Postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a pgx connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Kafka stores the order-events consumer settings. Empty brokers or
// topic disable the consumer.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// GatewayRetry describes retry behavior for cross-service gateways.
type GatewayRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Gateways stores base URLs of the collaborating services.
type Gateways struct {
	OrdersBaseURL        string
	UsersBaseURL         string
	NotificationsBaseURL string
	Timeout              time.Duration
	Retry                GatewayRetry
}

// Outbox stores side-effect relay settings.
type Outbox struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Redis stores the tracking-cache settings. An empty Addr disables
// the cache.
type Redis struct {
	Addr     string
	TrackTTL time.Duration
}

// RateLimit stores per-client HTTP rate limiting settings.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Config stores all dispatch service settings.
type Config struct {
	Port      int
	PprofPort int
	DB        DB
	Kafka     Kafka
	Gateways  Gateways
	Outbox    Outbox
	Redis     Redis
	RateLimit RateLimit
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{
		Port:      envInt("PORT", DefaultPort()),
		PprofPort: envInt("PPROF_PORT", 0),
		DB: DB{
			Host: envStr("DB_HOST", DefaultDB().Host),
			Port: envStr("DB_PORT", DefaultDB().Port),
			User: envStr("DB_USER", DefaultDB().User),
			Pass: envStr("DB_PASS", DefaultDB().Pass),
			Name: envStr("DB_NAME", DefaultDB().Name),
		},
		Kafka: Kafka{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envStr("KAFKA_ORDERS_TOPIC", DefaultKafka().Topic),
			GroupID: envStr("KAFKA_GROUP_ID", DefaultKafka().GroupID),
		},
		Gateways: Gateways{
			OrdersBaseURL:        envStr("ORDER_SERVICE_URL", DefaultGateways().OrdersBaseURL),
			UsersBaseURL:         envStr("USER_SERVICE_URL", DefaultGateways().UsersBaseURL),
			NotificationsBaseURL: envStr("NOTIFICATION_SERVICE_URL", DefaultGateways().NotificationsBaseURL),
			Timeout:              envDuration("GATEWAY_TIMEOUT", DefaultGateways().Timeout),
			Retry:                DefaultGateways().Retry,
		},
		Outbox: Outbox{
			PollInterval: envDuration("OUTBOX_POLL_INTERVAL", DefaultOutbox().PollInterval),
			BatchSize:    envInt("OUTBOX_BATCH_SIZE", DefaultOutbox().BatchSize),
			MaxAttempts:  envInt("OUTBOX_MAX_ATTEMPTS", DefaultOutbox().MaxAttempts),
		},
		Redis: Redis{
			Addr:     envStr("REDIS_ADDR", ""),
			TrackTTL: envDuration("REDIS_TRACK_TTL", DefaultRedis().TrackTTL),
		},
		RateLimit: RateLimit{
			Limit:  envInt("RATE_LIMIT", DefaultRateLimit().Limit),
			Window: envDuration("RATE_LIMIT_WINDOW", DefaultRateLimit().Window),
		},
	}

	fs := pflag.NewFlagSet("service-dispatch", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Outbox.BatchSize <= 0 {
		return nil, fmt.Errorf("invalid outbox batch size: %d", cfg.Outbox.BatchSize)
	}
	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
