package global

import (
	"context"

	"ChatRoom/global/config"
	"ChatRoom/logger"
	mid "ChatRoom/middleware"
	"ChatRoom/service/chat"
	"ChatRoom/service/events"
	"ChatRoom/service/session"
	"ChatRoom/service/storage"
	"ChatRoom/service/storage/redis"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the collaborators opened once at startup and closed on exit.
type Deps struct {
	Store    storage.Store
	Sessions session.Store
	Events   events.Publisher
	// Presence is nil unless PRESENCE_REDIS is set.
	Presence chat.Presence

	pool    *pgxpool.Pool
	rdb     *goredis.Client
	closers []func()
}

// ConfigAll opens storage, the session store and the event publisher
// selected by cfg. On error everything opened so far is closed again.
func ConfigAll(ctx context.Context, cfg config.AppConfig) (d *Deps, err error) {
	d = &Deps{}
	defer func() {
		if err != nil {
			d.Close()
			d = nil
		}
	}()

	if err = d.configStorage(ctx, cfg); err != nil {
		return d, err
	}
	if err = d.configSessions(ctx, cfg); err != nil {
		return d, err
	}
	if err = d.configEvents(cfg.Events); err != nil {
		return d, err
	}
	if err = d.configPresence(ctx, cfg); err != nil {
		return d, err
	}
	return d, nil
}

// ConfigMiddleware registers the guards that run in front of every route.
func ConfigMiddleware(cfg config.AppConfig) {
	mid.Manager().Add(mid.Origin(cfg.WsPath, cfg.ClientURL))
}

func (d *Deps) postgres(ctx context.Context, cfg config.AppConfig) (*pgxpool.Pool, error) {
	if d.pool != nil {
		return d.pool, nil
	}
	pool, err := storage.OpenPool(ctx, cfg.Storage.PgConnStr)
	if err != nil {
		return nil, err
	}
	d.pool = pool
	d.closers = append(d.closers, pool.Close)
	return pool, nil
}

func (d *Deps) redisClient(ctx context.Context, cfg config.AppConfig) (*goredis.Client, error) {
	if d.rdb != nil {
		return d.rdb, nil
	}
	rdb, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	d.rdb = rdb
	d.closers = append(d.closers, func() { _ = rdb.Close() })
	return rdb, nil
}

func (d *Deps) configStorage(ctx context.Context, cfg config.AppConfig) error {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logger.Warn("using in-memory storage, nothing is persisted")
		d.Store = storage.NewMemStore()
		return nil
	case config.StorageDriverPostgres:
		pool, err := d.postgres(ctx, cfg)
		if err != nil {
			return err
		}
		if cfg.Storage.Migrate {
			if err := storage.Migrate(ctx, pool); err != nil {
				return err
			}
			logger.Info("schema applied")
		}
		d.Store = storage.NewPgStore(pool)
		return nil
	default:
		return errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (d *Deps) configSessions(ctx context.Context, cfg config.AppConfig) error {
	switch cfg.Session.Store {
	case config.SessionStorePostgres:
		pool, err := d.postgres(ctx, cfg)
		if err != nil {
			return err
		}
		d.Sessions = session.NewPgStore(pool)
	case config.SessionStoreRedis:
		rdb, err := d.redisClient(ctx, cfg)
		if err != nil {
			return err
		}
		d.Sessions = session.NewRedisStore(rdb, cfg.Session.RedisPrefix)
	case config.SessionStoreMemory:
		logger.Warn("using in-memory sessions, no browser can sign in")
		d.Sessions = session.NewMemStore()
	default:
		return errors.Errorf("unknown session store %q", cfg.Session.Store)
	}
	return nil
}

func (d *Deps) configEvents(cfg config.EventsConfig) error {
	pub, err := events.Open(cfg)
	if err != nil {
		return err
	}
	d.Events = pub
	d.closers = append(d.closers, func() {
		if err := pub.Close(); err != nil {
			logger.Warn("close event publisher", zap.Error(err))
		}
	})
	logger.Info("domain events", zap.String("driver", cfg.Driver), zap.String("topic", cfg.Topic))
	return nil
}

func (d *Deps) configPresence(ctx context.Context, cfg config.AppConfig) error {
	if !cfg.Presence {
		return nil
	}
	rdb, err := d.redisClient(ctx, cfg)
	if err != nil {
		return err
	}
	d.Presence = redis.NewPresence(rdb, cfg.NodeId, 2*cfg.HeartbeatInterval+cfg.StorageTimeout)
	logger.Info("presence mirrored to redis", zap.String("addr", cfg.Redis.Addr))
	return nil
}

// Close releases everything in reverse opening order.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}
