package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"ChatRoom/logger"
	"ChatRoom/tools/errs"
	"ChatRoom/tools/safe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Router turns raw inbound frames into handler calls and handler failures
// into error frames.
type Router struct {
	h       Handlers
	timeout time.Duration
	log     *zap.Logger
}

func NewRouter(h Handlers, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Router{h: h, timeout: timeout, log: logger.Named("router")}
}

// Handle processes one frame of c. It never fails: every problem ends up as an
// error frame for c.
func (r *Router) Handle(ctx context.Context, c *Conn, frame []byte) {
	switch string(frame) {
	case PingFrame:
		c.Send([]byte(PongFrame))
		return
	case PongFrame:
		c.MarkAlive()
		return
	}

	ev, err := parseFrame(frame)
	if err != nil {
		r.log.Debug("rejected frame", zap.String("conn", c.ID()), zap.Error(err))
		c.Send(errorFrame(errs.MaskedMessage))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err = safe.Call(func() error { return r.dispatch(ctx, c, ev) })
	if err == nil {
		return
	}

	fields := []zap.Field{
		zap.String("conn", c.ID()),
		zap.Int64("user", c.UserID()),
		zap.String("event", ev.Name()),
		zap.Error(err),
	}
	var ce *errs.CodeError
	if errors.As(err, &ce) {
		r.log.Debug("event refused", fields...)
	} else {
		r.log.Error("event failed", fields...)
	}
	c.Send(errorFrame(errs.Wire(err)))
}

func (r *Router) dispatch(ctx context.Context, c *Conn, ev Event) error {
	switch e := ev.(type) {
	case OnlineMember:
		return r.h.OnlineMember(ctx, c, e)
	case OfflineMember:
		return r.h.OfflineMember(ctx, c, e)
	case OnlineMembers:
		return r.h.OnlineMembers(ctx, c, e)
	case BanMember:
		return r.h.BanMember(ctx, c, e)
	case SendMessage:
		return r.h.Message(ctx, c, e)
	case SeeMessage:
		return r.h.SeeMessage(ctx, c, e)
	default:
		return errors.Errorf("unhandled event %T", ev)
	}
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// parseFrame checks the {event, data} shape and decodes data into its event
// type.
func parseFrame(frame []byte) (Event, error) {
	var in inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		return nil, errors.Wrap(err, "parse frame")
	}
	if in.Event == "" {
		return nil, errors.New("missing event")
	}

	dec := json.NewDecoder(bytes.NewReader(in.Data))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(err, "parse data")
	}
	if data == nil {
		return nil, errors.New("data is not an object")
	}
	return DecodeEvent(in.Event, data)
}
