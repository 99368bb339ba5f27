package chat

import (
	"context"
	"net/http"
	"time"

	"ChatRoom/middleware/security"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HandleWS upgrades a request already admitted by the session middleware.
// Requests without an authenticated user are refused before the handshake.
func (s *Server) HandleWS(c *gin.Context) {
	userID, ok := security.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the request.
		s.log.Info("upgrade websocket failed", zap.Int64("user", userID), zap.Error(err))
		return
	}
	s.Serve(ws, userID)
}

// Serve runs an upgraded socket for userID until it closes.
func (s *Server) Serve(ws *websocket.Conn, userID int64) {
	if !s.track() {
		s.refuse(ws, userID)
		return
	}
	defer s.wg.Done()

	c := NewConn(s.ids.NextString(), userID, s.opts.SendQueueSize)
	s.reg.Add(c)
	if s.ctx.Err() != nil {
		c.CloseWith(CloseGoingAway, "server shutdown")
	}
	log := s.log.With(zap.String("conn", c.ID()), zap.Int64("user", userID))
	log.Debug("connection opened", zap.String("remote", ws.RemoteAddr().String()))
	s.mirror("online", s.opts.Presence.Online, c)

	ctx, cancel := context.WithCancel(s.ctx)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writePump(ws, c, log)
	}()

	s.readPump(ctx, ws, c, log)

	cancel()
	s.reg.Remove(c)
	c.CloseWith(0, "")
	<-writerDone
	c.refreshes.Wait()
	s.mirror("offline", s.opts.Presence.Offline, c)

	code, reason := c.closeInfo()
	log.Debug("connection closed", zap.Int("code", code), zap.String("reason", reason),
		zap.Duration("lifetime", time.Since(c.Since())))
}

// track registers a running Serve unless Shutdown already started.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

// refuse closes a socket upgraded after Shutdown started.
func (s *Server) refuse(ws *websocket.Conn, userID int64) {
	msg := websocket.FormatCloseMessage(CloseGoingAway, "server shutdown")
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.opts.WriteWait))
	_ = ws.Close()
	s.log.Debug("connection refused during shutdown", zap.Int64("user", userID))
}

// readPump feeds frames to the router one at a time until the transport
// fails or the writer drops it.
func (s *Server) readPump(ctx context.Context, ws *websocket.Conn, c *Conn, log *zap.Logger) {
	ws.SetReadLimit(s.opts.MaxMessageSize)
	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
				log.Debug("peer closed", zap.Error(err))
			case c.Closed():
				// closed by us
			default:
				log.Info("read failed", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		s.router.Handle(ctx, c, data)
	}
}

// writePump is the only goroutine writing to ws. It drains the outbound
// queue, drives the heartbeat and performs the close.
func (s *Server) writePump(ws *websocket.Conn, c *Conn, log *zap.Logger) {
	ticker := time.NewTicker(s.opts.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case <-c.Done():
			if code, reason := c.closeInfo(); code != 0 {
				msg := websocket.FormatCloseMessage(code, reason)
				if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.opts.WriteWait)); err != nil {
					log.Debug("write close frame failed", zap.Error(err))
				}
			}
			return

		case frame := <-c.Outbound():
			if err := s.write(ws, frame); err != nil {
				log.Info("write failed", zap.Error(err))
				c.CloseWith(0, "")
				return
			}

		case <-ticker.C:
			if !heartbeat(c) {
				log.Info("heartbeat timeout")
				continue
			}
			s.refresh(c)
			if err := s.write(ws, []byte(PingFrame)); err != nil {
				log.Info("write ping failed", zap.Error(err))
				c.CloseWith(0, "")
				return
			}
		}
	}
}

func (s *Server) write(ws *websocket.Conn, frame []byte) error {
	_ = ws.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
	return ws.WriteMessage(websocket.TextMessage, frame)
}
