package global

import (
	"context"
	"testing"

	"ChatRoom/global/config"
	"ChatRoom/service/events"
	"ChatRoom/service/session"
	"ChatRoom/service/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAll_InMemory(t *testing.T) {
	cfg := config.Global
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Session.Store = config.SessionStoreMemory
	cfg.Events.Driver = config.EventsDriverNone

	d, err := ConfigAll(context.Background(), cfg)
	require.NoError(t, err)
	defer d.Close()

	assert.IsType(t, &storage.MemStore{}, d.Store)
	assert.IsType(t, &session.MemStore{}, d.Sessions)
	assert.IsType(t, events.Nop{}, d.Events)
}

func TestConfigAll_UnknownDrivers(t *testing.T) {
	tests := map[string]func(c *config.AppConfig){
		"storage": func(c *config.AppConfig) { c.Storage.Driver = "sqlite" },
		"session": func(c *config.AppConfig) { c.Session.Store = "cookie" },
		"events":  func(c *config.AppConfig) { c.Events.Driver = "carrier-pigeon" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.Global
			cfg.Storage.Driver = config.StorageDriverMemory
			cfg.Session.Store = config.SessionStoreMemory
			mutate(&cfg)

			d, err := ConfigAll(context.Background(), cfg)
			assert.Error(t, err)
			assert.Nil(t, d)
		})
	}
}
