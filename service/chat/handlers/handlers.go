package handlers

import (
	"context"
	"strconv"
	"time"

	"ChatRoom/logger"
	"ChatRoom/service/chat"
	"ChatRoom/service/events"
	"ChatRoom/service/storage"
	"ChatRoom/tools/safe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// publishTimeout bounds one domain event publish.
const publishTimeout = 5 * time.Second

// Handlers implements every inbound chat event against the store and the
// live registry of this node.
type Handlers struct {
	store storage.Store
	reg   *chat.Registry
	fan   *chat.Fanout
	pub   events.Publisher
	log   *zap.Logger
}

var _ chat.Handlers = (*Handlers)(nil)

func New(store storage.Store, reg *chat.Registry, fan *chat.Fanout, pub events.Publisher) *Handlers {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Handlers{
		store: store,
		reg:   reg,
		fan:   fan,
		pub:   pub,
		log:   logger.Named("handlers"),
	}
}

// room loads a room, turning a miss into notFound.
func (h *Handlers) room(ctx context.Context, id int64, notFound error) (storage.Room, error) {
	r, err := h.store.Room(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Room{}, notFound
	}
	return r, err
}

// member loads a membership. found is false on a miss; err is set only for
// storage failures.
func (h *Handlers) member(ctx context.Context, userID, roomID int64) (m storage.Member, found bool, err error) {
	m, err = h.store.Member(ctx, userID, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Member{}, false, nil
	}
	if err != nil {
		return storage.Member{}, false, err
	}
	return m, true, nil
}

// publish sends a domain event in the background. Failures are logged only.
func (h *Handlers) publish(typ string, roomID int64, data any) {
	env := events.NewEnvelope(typ, strconv.FormatInt(roomID, 10), data)
	safe.Go("publish "+typ, func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.pub.Publish(ctx, env); err != nil {
			h.log.Warn("publish domain event failed",
				zap.String("type", typ), zap.String("id", env.ID), zap.Error(err))
		}
	})
}
