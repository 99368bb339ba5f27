package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"PG_CONN_STR": "postgres://localhost/chat",
		"SECRET":      "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/ws", cfg.WsPath)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, "sId", cfg.Session.CookieName)
	assert.Equal(t, EventsDriverNone, cfg.Events.Driver)
	assert.False(t, cfg.Presence)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"PORT":               "9000",
		"HEARTBEAT_INTERVAL": "45",
		"STORAGE_TIMEOUT":    "1500ms",
		"STORAGE_DRIVER":     "MEMORY",
		"SESSION_STORE":      "redis",
		"SECRET":             "s3cret",
		"EVENTS_DRIVER":      "kafka",
		"KAFKA_BROKERS":      "k1:9092, k2:9092,,",
		"PG_MIGRATE":         "true",
		"PRESENCE_REDIS":     "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.StorageTimeout)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.True(t, cfg.Storage.Migrate)
	assert.True(t, cfg.Presence)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "eighty", "SECRET": "x", "STORAGE_DRIVER": "memory", "SESSION_STORE": "memory"}},
		{"missing secret", map[string]string{"STORAGE_DRIVER": "memory", "SESSION_STORE": "memory"}},
		{"postgres without conn str", map[string]string{"SECRET": "x"}},
		{"unknown events driver", map[string]string{"SECRET": "x", "STORAGE_DRIVER": "memory", "SESSION_STORE": "memory", "EVENTS_DRIVER": "smtp"}},
		{"nats without url", map[string]string{"SECRET": "x", "STORAGE_DRIVER": "memory", "SESSION_STORE": "memory", "EVENTS_DRIVER": "nats"}},
		{"bad ws path", map[string]string{"SECRET": "x", "STORAGE_DRIVER": "memory", "SESSION_STORE": "memory", "WS_PATH": "ws"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
