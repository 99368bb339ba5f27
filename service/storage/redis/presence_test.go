package redis

import (
	"context"
	"testing"
	"time"

	"ChatRoom/global/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresence_Keys(t *testing.T) {
	p := NewPresence(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), 7, time.Minute)
	defer p.rdb.Close()

	assert.Equal(t, "chat:presence:42", p.key(42))
	assert.Equal(t, "7:conn-1", p.member("conn-1"))
}

func TestOpen_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := Open(ctx, config.RedisConfig{Addr: "127.0.0.1:1", PoolSize: 1})
	require.Error(t, err)
	assert.Nil(t, rdb)
	assert.Contains(t, err.Error(), "ping redis 127.0.0.1:1")
}
