package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventlane/admission-service/internal/di"
	"github.com/eventlane/admission-service/internal/metrics"
	"github.com/eventlane/admission-service/internal/repository"
	"github.com/eventlane/admission-service/internal/service"
	"github.com/eventlane/admission-service/pkg/config"
	"github.com/eventlane/admission-service/pkg/database"
	"github.com/eventlane/admission-service/pkg/logger"
	"github.com/eventlane/admission-service/pkg/middleware"
	pkgredis "github.com/eventlane/admission-service/pkg/redis"
	"github.com/eventlane/admission-service/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Admission Service...")

	ctx := context.Background()

	// Tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn("Metrics init failed", zap.Error(err))
	}

	// Database
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected",
		zap.Int32("min_conns", dbCfg.MinConns),
		zap.Int32("max_conns", dbCfg.MaxConns),
	)

	// Redis
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		PoolTimeout:   4 * time.Second,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected", zap.Int("pool_size", redisCfg.PoolSize))

	// Kafka lifecycle event publisher
	var requestPublisher service.RequestPublisher
	requestPublisher, err = service.NewKafkaRequestPublisher(ctx, &service.RequestPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
		requestPublisher = service.NewNoOpRequestPublisher()
	} else {
		appLog.Info("Kafka request publisher connected")
	}
	defer requestPublisher.Close()

	// Repositories
	requestLedger := repository.NewPostgresRequestRepository(db.Pool())
	eventLookup := repository.NewPostgresEventRepository(db.Pool())

	container := di.NewContainer(&di.ContainerConfig{
		DB:               db,
		Redis:            redisClient,
		RequestLedger:    requestLedger,
		EventLookup:      eventLookup,
		RequestPublisher: requestPublisher,
		ServiceConfig:    &service.AdmissionServiceConfig{},
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(appLog))
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"version": cfg.App.Version,
				"service": cfg.App.Name,
			})
		})

		users := v1.Group("/users")
		users.Use(middleware.Auth(cfg.JWT.Secret))

		idempotencyConfig := middleware.DefaultIdempotencyConfig(redisClient.Client())
		idempotencyConfig.SkipPaths = []string{"/health", "/ready"}

		{
			// Requester-facing routes
			users.GET("/:userId/requests", middleware.RequireSelf("userId"), container.RequestHandler.GetUserRequests)
			users.POST("/:userId/requests", middleware.RequireSelf("userId"), middleware.IdempotencyMiddleware(idempotencyConfig), container.RequestHandler.CreateRequest)
			users.PATCH("/:userId/requests/:requestId/cancel", middleware.RequireSelf("userId"), container.RequestHandler.CancelRequest)

			// Owner-facing moderation routes
			users.GET("/:userId/events/:eventId/requests", middleware.RequireSelf("userId"), container.RequestHandler.GetEventRequests)
			users.PATCH("/:userId/events/:eventId/requests", middleware.RequireSelf("userId"), middleware.IdempotencyMiddleware(idempotencyConfig), container.RequestHandler.UpdateRequestStatuses)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLog.Info("Admission Service listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
