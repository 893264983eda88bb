package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/galantry1/luba.tv/internal/config"
	"github.com/galantry1/luba.tv/internal/handler"
	"github.com/galantry1/luba.tv/internal/hub"
	"github.com/galantry1/luba.tv/internal/registry"
	"github.com/galantry1/luba.tv/internal/service"
	pkglog "github.com/galantry1/luba.tv/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, ServiceName: "luba.tv"})
	logger := pkglog.L()

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Dur("empty_room_ttl", cfg.Room.EmptyTTL).
		Msg("starting watch-party server")

	// Room registry with idle-TTL lifecycle
	reg := registry.New(cfg.Room.EmptyTTL)

	// WebSocket hub
	wsHub := hub.NewHub(hub.Config{
		PingInterval:   cfg.WebSocket.PingInterval,
		PongWait:       cfg.WebSocket.PongWait,
		WriteWait:      cfg.WebSocket.WriteWait,
		MaxMessageSize: cfg.WebSocket.MaxMessageSize,
	})
	go wsHub.Run()

	// Session coordinator
	watchSvc := service.NewWatchService(wsHub, reg, service.Config{
		AllowHostClaim: cfg.Room.AllowHostClaim,
	})

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(pkglog.GinMiddleware(logger), gin.Recovery())

	handler.NewWSHandler(wsHub, watchSvc, cfg.CORS.AllowedOrigins).RegisterRoutes(router)
	handler.NewHTTPHandler(reg).RegisterRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}

	logger.Info().Msg("watch-party server stopped")
}
