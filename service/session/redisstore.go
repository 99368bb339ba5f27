package session

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore reads sessions written by connect-redis: one JSON string per
// key, expiry handled by redis TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Lookup(ctx context.Context, sid string) (Principal, error) {
	doc, err := s.rdb.Get(ctx, s.prefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return Principal{}, ErrNoSession
	}
	if err != nil {
		return Principal{}, errors.Wrap(err, "get session")
	}
	return parse(doc)
}
