package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codearena/internal/common/cache"
	"codearena/internal/common/db"
	"codearena/internal/common/metrics"
	"codearena/internal/leaderboard/controller"
	"codearena/internal/leaderboard/fanout"
	"codearena/internal/scoring/repository"
	scoringservice "codearena/internal/scoring/service"
	"codearena/pkg/utils/logger"
)

const (
	defaultConfigPath  = "configs/leaderboard_service.yaml"
	listenerRetryDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	mysqlDB, err := db.NewMySQLWithConfig(&appCfg.Database)
	if err != nil {
		logger.Error(context.Background(), "init database failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mysqlDB.Close()
	}()

	redisCache, err := cache.NewRedisCacheWithConfig(&appCfg.Redis)
	if err != nil {
		logger.Error(context.Background(), "init redis failed", zap.Error(err))
		return
	}
	defer func() {
		_ = redisCache.Close()
	}()

	channel := appCfg.Channel
	if channel == "" {
		channel = scoringservice.BroadcastChannel
	}

	hub := fanout.NewHub()
	defer hub.Close()
	listener := fanout.NewListener(redisCache, channel, hub)

	listenerCtx, stopListener := context.WithCancel(context.Background())
	defer stopListener()
	go func() {
		// Keep the subscription alive across broker hiccups. Viewers miss
		// updates while disconnected and catch up on the next broadcast.
		for {
			err := listener.Run(listenerCtx)
			if listenerCtx.Err() != nil {
				return
			}
			logger.Warn(listenerCtx, "leaderboard listener stopped, retrying", zap.Error(err))
			select {
			case <-listenerCtx.Done():
				return
			case <-time.After(listenerRetryDelay):
			}
		}
	}()

	leaderboardRepo := repository.NewLeaderboardRepository(mysqlDB)
	httpServer := buildHTTPServer(appCfg.Server, leaderboardRepo, hub)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "leaderboard http server started", zap.String("addr", appCfg.Server.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	stopListener()
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg ServerConfig, store controller.SnapshotStore, hub *fanout.Hub) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())
	controller.NewLeaderboardController(store, hub).RegisterRoutes(router)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
