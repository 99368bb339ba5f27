package config

import "time"

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"

	EventsDriverNone  = "none"
	EventsDriverNats  = "nats"
	EventsDriverKafka = "kafka"
	EventsDriverAmqp  = "amqp"
)

type AppConfig struct {
	NodeId    int64  // snowflake node of this gateway (0~1023)
	Port      int    // http listen port
	WsPath    string // upgrade route
	ClientURL string // allowed Origin; empty allows any
	LogLevel  string

	HeartbeatInterval time.Duration
	StorageTimeout    time.Duration // per frame
	SendQueueSize     int           // outbound frames buffered per connection
	MaxMessageSize    int64         // inbound frame limit in bytes
	Presence          bool          // mirror connections into redis

	Storage StorageConfig
	Session SessionConfig
	Redis   RedisConfig
	Events  EventsConfig
}

type StorageConfig struct {
	Driver    string
	PgConnStr string
	Migrate   bool
}

type SessionConfig struct {
	Store       string
	Secret      string // express-session cookie secret
	CookieName  string
	RedisPrefix string
	JwtSecret   string // enables bearer tokens when set
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type EventsConfig struct {
	Driver       string
	Topic        string
	NatsURL      string
	KafkaBrokers []string
	AmqpURL      string
}
