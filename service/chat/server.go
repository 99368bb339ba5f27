package chat

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ChatRoom/logger"
	"ChatRoom/tools/ids"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Options struct {
	HeartbeatInterval time.Duration
	WriteWait         time.Duration
	SendQueueSize     int
	MaxMessageSize    int64
	// CheckOrigin is handed to the upgrader; nil accepts any origin.
	CheckOrigin func(r *http.Request) bool
	// Presence is told about every connection; nil keeps presence local.
	Presence Presence
}

func (o *Options) norm() {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 256
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 1 << 20
	}
	if o.CheckOrigin == nil {
		o.CheckOrigin = func(*http.Request) bool { return true }
	}
	if o.Presence == nil {
		o.Presence = nopPresence{}
	}
}

// Server owns the live connections of this gateway node.
type Server struct {
	reg      *Registry
	router   *Router
	ids      *ids.Generator
	opts     Options
	upgrader websocket.Upgrader
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func NewServer(reg *Registry, router *Router, gen *ids.Generator, opts Options) *Server {
	opts.norm()
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		reg:    reg,
		router: router,
		ids:    gen,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
		log:    logger.Named("ws"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) Registry() *Registry { return s.reg }

// Shutdown closes every connection with CloseGoingAway and waits for their
// goroutines until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	s.cancel()
	n := s.reg.CloseAll(CloseGoingAway, "server shutdown")
	s.log.Info("closing connections", zap.Int("count", n))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) HandleStats(c *gin.Context) {
	conns, users, rooms := s.reg.Stats()
	c.JSON(http.StatusOK, gin.H{"connections": conns, "users": users, "rooms": rooms})
}
