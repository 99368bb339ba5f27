package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Presence keeps one sorted set per user: members are "<node>:<conn>" and
// scores the unix second the entry expires. Readers drop expired members.
type Presence struct {
	rdb    *redis.Client
	node   string
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewPresence mirrors the connections of gateway node into rdb. ttl should
// cover at least two heartbeat intervals.
func NewPresence(rdb *redis.Client, node int64, ttl time.Duration) *Presence {
	return &Presence{
		rdb:    rdb,
		node:   strconv.FormatInt(node, 10),
		ttl:    ttl,
		prefix: "chat:presence:",
		now:    time.Now,
	}
}

func (p *Presence) key(userID int64) string {
	return p.prefix + strconv.FormatInt(userID, 10)
}

func (p *Presence) member(connID string) string {
	return p.node + ":" + connID
}

func (p *Presence) Online(ctx context.Context, userID int64, connID string) error {
	return errors.Wrapf(p.touch(ctx, userID, connID), "presence online user=%d", userID)
}

func (p *Presence) Refresh(ctx context.Context, userID int64, connID string) error {
	return errors.Wrapf(p.touch(ctx, userID, connID), "presence refresh user=%d", userID)
}

func (p *Presence) touch(ctx context.Context, userID int64, connID string) error {
	now := p.now()
	key := p.key(userID)
	_, err := p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Add(p.ttl).Unix()), Member: p.member(connID)})
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(now.Unix(), 10))
		pipe.Expire(ctx, key, p.ttl)
		return nil
	})
	return err
}

func (p *Presence) Offline(ctx context.Context, userID int64, connID string) error {
	err := p.rdb.ZRem(ctx, p.key(userID), p.member(connID)).Err()
	return errors.Wrapf(err, "presence offline user=%d", userID)
}
