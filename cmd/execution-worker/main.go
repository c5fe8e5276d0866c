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

	"codearena/internal/common/db"
	"codearena/internal/common/metrics"
	"codearena/internal/common/mq"
	"codearena/internal/common/storage"
	"codearena/internal/judge/controller"
	"codearena/internal/judge/repository"
	"codearena/internal/judge/sandbox"
	"codearena/internal/judge/sandbox/engine"
	"codearena/internal/judge/sandbox/runner"
	"codearena/internal/judge/sandbox/security"
	"codearena/internal/judge/service"
	"codearena/internal/judge/testcase"
	"codearena/pkg/utils/logger"
)

const defaultConfigPath = "configs/execution_worker.yaml"

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

	objStorage, err := storage.NewMinIOStorage(appCfg.MinIO)
	if err != nil {
		logger.Error(context.Background(), "init minio failed", zap.Error(err))
		return
	}

	mqClient, err := mq.NewKafkaQueue(appCfg.Kafka.toMQConfig())
	if err != nil {
		logger.Error(context.Background(), "init kafka failed", zap.Error(err))
		return
	}
	defer func() {
		_ = mqClient.Close()
	}()

	resolver := security.NewStaticResolver(security.DefaultProfiles())
	eng, err := engine.NewEngine(appCfg.Sandbox.toEngineConfig(), resolver)
	if err != nil {
		logger.Error(context.Background(), "init sandbox engine failed", zap.Error(err))
		return
	}
	worker := sandbox.NewWorker(runner.NewRunner(eng))

	subRepo := repository.NewSubmissionRepository(mysqlDB)
	scoringPub := repository.NewScoringPublisher(mqClient, appCfg.Kafka.ScoringTopic)
	provider := testcase.NewArchiveProvider(objStorage, appCfg.MinIO.Bucket)

	judgeSvc, err := service.NewJudgeService(appCfg.Judge, worker, provider, subRepo, scoringPub)
	if err != nil {
		logger.Error(context.Background(), "init judge service failed", zap.Error(err))
		return
	}
	worker.SetStatusReporter(judgeSvc.StatusReporter())

	err = mqClient.Subscribe(context.Background(), appCfg.Kafka.SubmissionsTopic, judgeSvc.HandleMessage, &mq.SubscribeOptions{
		ConsumerGroup:   appCfg.Kafka.ConsumerGroup,
		Workers:         appCfg.Kafka.Workers,
		MaxRetries:      appCfg.Kafka.MaxRetries,
		RetryDelay:      appCfg.Kafka.RetryDelay,
		ReconnectDelay:  appCfg.Kafka.ReconnectDelay,
		DeadLetterTopic: appCfg.Kafka.DeadLetterTopic,
	})
	if err != nil {
		logger.Error(context.Background(), "subscribe kafka failed", zap.Error(err))
		return
	}
	if err := mqClient.Start(); err != nil {
		logger.Error(context.Background(), "start kafka consumer failed", zap.Error(err))
		return
	}

	httpServer := buildHTTPServer(appCfg.Server, judgeSvc)
	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "execution worker http server started", zap.String("addr", appCfg.Server.Addr))
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

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
	_ = mqClient.Stop()
}

func buildHTTPServer(cfg ServerConfig, judgeSvc *service.JudgeService) *http.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())
	controller.NewSubmissionController(judgeSvc).RegisterRoutes(router)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Info(
			c.Request.Context(),
			"request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
