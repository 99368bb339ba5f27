package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var Global = AppConfig{
	NodeId:            1,
	Port:              8080,
	WsPath:            "/ws",
	LogLevel:          "info",
	HeartbeatInterval: 30 * time.Second,
	StorageTimeout:    5 * time.Second,
	SendQueueSize:     256,
	MaxMessageSize:    1 << 20,
	Storage: StorageConfig{
		Driver: StorageDriverPostgres,
	},
	Session: SessionConfig{
		Store:       SessionStorePostgres,
		CookieName:  "sId",
		RedisPrefix: "sess:",
	},
	Redis: RedisConfig{
		Addr:     "127.0.0.1:6379",
		PoolSize: 10,
	},
	Events: EventsConfig{
		Driver: EventsDriverNone,
		Topic:  "chat.events",
	},
}

// Load reads an optional .env file and overlays the environment on Global.
func Load(files ...string) (AppConfig, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return AppConfig{}, errors.Wrap(err, "load .env")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the configuration from lookup, falling back to Global.
func FromEnv(lookup func(string) (string, bool)) (AppConfig, error) {
	cfg := Global
	cfg.Events.KafkaBrokers = append([]string(nil), Global.Events.KafkaBrokers...)
	e := envReader{lookup: lookup}

	cfg.NodeId = e.int64("NODE_ID", cfg.NodeId)
	cfg.Port = e.int("PORT", cfg.Port)
	cfg.WsPath = e.string("WS_PATH", cfg.WsPath)
	cfg.ClientURL = e.string("CLIENT_URL", cfg.ClientURL)
	cfg.LogLevel = e.string("LOG_LEVEL", cfg.LogLevel)
	cfg.HeartbeatInterval = e.duration("HEARTBEAT_INTERVAL", cfg.HeartbeatInterval)
	cfg.StorageTimeout = e.duration("STORAGE_TIMEOUT", cfg.StorageTimeout)
	cfg.SendQueueSize = e.int("SEND_QUEUE_SIZE", cfg.SendQueueSize)
	cfg.MaxMessageSize = e.int64("MAX_MESSAGE_SIZE", cfg.MaxMessageSize)
	cfg.Presence = e.bool("PRESENCE_REDIS", cfg.Presence)

	cfg.Storage.Driver = strings.ToLower(e.string("STORAGE_DRIVER", cfg.Storage.Driver))
	cfg.Storage.PgConnStr = e.string("PG_CONN_STR", cfg.Storage.PgConnStr)
	cfg.Storage.Migrate = e.bool("PG_MIGRATE", cfg.Storage.Migrate)

	cfg.Session.Store = strings.ToLower(e.string("SESSION_STORE", cfg.Session.Store))
	cfg.Session.Secret = e.string("SECRET", cfg.Session.Secret)
	cfg.Session.CookieName = e.string("SESSION_COOKIE", cfg.Session.CookieName)
	cfg.Session.RedisPrefix = e.string("REDIS_SESSION_PREFIX", cfg.Session.RedisPrefix)
	cfg.Session.JwtSecret = e.string("JWT_SECRET", cfg.Session.JwtSecret)

	cfg.Redis.Addr = e.string("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = e.string("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = e.int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PoolSize = e.int("REDIS_POOL_SIZE", cfg.Redis.PoolSize)

	cfg.Events.Driver = strings.ToLower(e.string("EVENTS_DRIVER", cfg.Events.Driver))
	cfg.Events.Topic = e.string("EVENTS_TOPIC", cfg.Events.Topic)
	cfg.Events.NatsURL = e.string("NATS_URL", cfg.Events.NatsURL)
	cfg.Events.AmqpURL = e.string("AMQP_URL", cfg.Events.AmqpURL)
	if v := e.string("KAFKA_BROKERS", ""); v != "" {
		cfg.Events.KafkaBrokers = splitList(v)
	}

	if e.err != nil {
		return AppConfig{}, e.err
	}
	return cfg, cfg.Validate()
}

// Validate reports the first inconsistent setting.
func (c AppConfig) Validate() error {
	if c.NodeId < 0 || c.NodeId > 1023 {
		return errors.Errorf("NODE_ID out of range: %d", c.NodeId)
	}
	if c.HeartbeatInterval <= 0 {
		return errors.New("HEARTBEAT_INTERVAL must be positive")
	}
	if c.SendQueueSize <= 0 {
		return errors.New("SEND_QUEUE_SIZE must be positive")
	}
	if !strings.HasPrefix(c.WsPath, "/") {
		return errors.Errorf("WS_PATH must start with '/': %q", c.WsPath)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Storage.PgConnStr == "" {
			return errors.New("PG_CONN_STR is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return errors.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Session.Store {
	case SessionStorePostgres:
		if c.Storage.PgConnStr == "" {
			return errors.New("PG_CONN_STR is required for the postgres session store")
		}
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return errors.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.Secret == "" {
		return errors.New("SECRET is required to verify session cookies")
	}

	switch c.Events.Driver {
	case EventsDriverNone:
	case EventsDriverNats:
		if c.Events.NatsURL == "" {
			return errors.New("NATS_URL is required for the nats events driver")
		}
	case EventsDriverKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka events driver")
		}
	case EventsDriverAmqp:
		if c.Events.AmqpURL == "" {
			return errors.New("AMQP_URL is required for the amqp events driver")
		}
	default:
		return errors.Errorf("unknown EVENTS_DRIVER %q", c.Events.Driver)
	}
	return nil
}

// envReader keeps the first parse error so Load can report it once.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) string(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *envReader) int(key string, def int) int {
	return int(e.int64(key, int64(def)))
}

func (e *envReader) int64(key string, def int64) int64 {
	v := e.string(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(errors.Wrapf(err, "parse %s", key))
		return def
	}
	return n
}

func (e *envReader) bool(key string, def bool) bool {
	v := e.string(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(errors.Wrapf(err, "parse %s", key))
		return def
	}
	return b
}

// duration accepts Go durations ("30s") or plain seconds ("30").
func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := e.string(key, "")
	if v == "" {
		return def
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(errors.Wrapf(err, "parse %s", key))
		return def
	}
	return d
}

func (e *envReader) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
