package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ChatRoom/global"
	"ChatRoom/global/config"
	"ChatRoom/logger"
	mid "ChatRoom/middleware"
	midsec "ChatRoom/middleware/security"
	"ChatRoom/service/chat"
	"ChatRoom/service/chat/handlers"
	"ChatRoom/tools/ids"
	jwtsec "ChatRoom/tools/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn("bad LOG_LEVEL, keeping default", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg); err != nil {
		logger.Error("gateway stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, stop context.CancelFunc, cfg config.AppConfig) error {
	deps, err := global.ConfigAll(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()
	global.ConfigMiddleware(cfg)

	reg := chat.NewRegistry()
	h := handlers.New(deps.Store, reg, chat.NewFanout(reg), deps.Events)
	srv := chat.NewServer(reg, chat.NewRouter(h, cfg.StorageTimeout), ids.NewGenerator(cfg.NodeId), chat.Options{
		HeartbeatInterval: cfg.HeartbeatInterval,
		SendQueueSize:     cfg.SendQueueSize,
		MaxMessageSize:    cfg.MaxMessageSize,
		Presence:          deps.Presence,
	})

	authOpts := midsec.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     cfg.Session.Secret,
		Sessions:   deps.Sessions,
		Timeout:    cfg.StorageTimeout,
	}
	if cfg.Session.JwtSecret != "" {
		authOpts.Tokens = jwtsec.DefaultOptions([]byte(cfg.Session.JwtSecret))
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), mid.Manager().Use())
	mid.GET(r, cfg.WsPath, srv.HandleWS, mid.RouteOpt{Auth: midsec.Middleware(authOpts)})
	mid.GET(r, "/healthz", srv.HandleHealth, mid.RouteOpt{})
	mid.GET(r, "/stats", srv.HandleStats, mid.RouteOpt{})

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("gateway listening",
			zap.String("addr", httpSrv.Addr),
			zap.String("ws", cfg.WsPath),
			zap.Int64("node", cfg.NodeId))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	return srv.Shutdown(shutdownCtx)
}
