package config

import "time"

const defaultPort = 8084

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "dispatch",
	Pass: "dispatch",
	Name: "dispatch_db",
}

var defaultKafka = Kafka{
	Topic:   "order-events",
	GroupID: "dispatch-workers",
}

var defaultGateways = Gateways{
	OrdersBaseURL:        "http://localhost:8081",
	UsersBaseURL:         "http://localhost:8082",
	NotificationsBaseURL: "http://localhost:8083",
	Timeout:              5 * time.Second,
	Retry: GatewayRetry{
		MaxAttempts: 4,
		BaseDelay:   150 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	},
}

var defaultOutbox = Outbox{
	PollInterval: 5 * time.Second,
	BatchSize:    20,
	MaxAttempts:  10,
}

var defaultRedis = Redis{
	TrackTTL: 30 * time.Second,
}

var defaultRateLimit = RateLimit{
	Limit:  100,
	Window: time.Second,
}

// DefaultPort returns the default HTTP port.
func DefaultPort() int { return defaultPort }

// DefaultDB returns the default database settings.
func DefaultDB() DB { return defaultDB }

// DefaultKafka returns the default order-events consumer settings.
func DefaultKafka() Kafka { return defaultKafka }

// DefaultGateways returns the default gateway settings.
func DefaultGateways() Gateways { return defaultGateways }

// DefaultOutbox returns the default outbox relay settings.
func DefaultOutbox() Outbox { return defaultOutbox }

// DefaultRedis returns the default tracking-cache settings.
func DefaultRedis() Redis { return defaultRedis }

// DefaultRateLimit returns the default HTTP rate limit settings.
func DefaultRateLimit() RateLimit { return defaultRateLimit }
