package chat

import (
	"context"

	"ChatRoom/tools/safe"

	"go.uber.org/zap"
)

// Presence mirrors the live connections of this node into a store other
// services can read. Entries expire unless refreshed by the heartbeat.
type Presence interface {
	Online(ctx context.Context, userID int64, connID string) error
	Refresh(ctx context.Context, userID int64, connID string) error
	Offline(ctx context.Context, userID int64, connID string) error
}

type nopPresence struct{}

func (nopPresence) Online(context.Context, int64, string) error  { return nil }
func (nopPresence) Refresh(context.Context, int64, string) error { return nil }
func (nopPresence) Offline(context.Context, int64, string) error { return nil }

type presenceOp func(ctx context.Context, userID int64, connID string) error

func (s *Server) mirror(name string, op presenceOp, c *Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.WriteWait)
	defer cancel()
	if err := op(ctx, c.UserID(), c.ID()); err != nil {
		s.log.Warn("presence "+name+" failed", zap.String("conn", c.ID()), zap.Int64("user", c.UserID()), zap.Error(err))
	}
}

// refresh runs off the writer goroutine. Serve waits for it before Offline,
// so a late refresh cannot outlive the connection's entry.
func (s *Server) refresh(c *Conn) {
	c.refreshes.Add(1)
	safe.Go("presence.refresh", func() {
		defer c.refreshes.Done()
		if c.Closed() {
			return
		}
		s.mirror("refresh", s.opts.Presence.Refresh, c)
	})
}
