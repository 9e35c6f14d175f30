package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clauseiq/clauseiq/internal/cache"
	"github.com/clauseiq/clauseiq/internal/config"
	"github.com/clauseiq/clauseiq/internal/database"
	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/handler"
	"github.com/clauseiq/clauseiq/internal/hub"
	"github.com/clauseiq/clauseiq/internal/logging"
	"github.com/clauseiq/clauseiq/internal/repository"
	"github.com/clauseiq/clauseiq/internal/service"
	"github.com/clauseiq/clauseiq/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: cfg.Log.ServiceName,
	})
	logger := logging.L()

	// Document store
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.MessageModel{}, &domain.StoredFileModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	// Object store
	ctx := context.Background()
	var store storage.ObjectStore
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3Store(ctx, cfg.Storage.S3)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize s3 storage")
		}
		logger.Info().Str("bucket", cfg.Storage.S3.Bucket).Msg("s3 storage initialized")
	case "local":
		store, err = storage.NewLocalStore(cfg.Storage.Local)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize local storage")
		}
		logger.Info().Str("path", cfg.Storage.Local.BasePath).Msg("local storage initialized")
	default:
		logger.Fatal().Str("backend", cfg.Storage.Backend).Msg("unsupported storage backend")
	}

	// Optional message cache
	var msgCache cache.MessageCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisMessageCache(cfg.Cache.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		msgCache = redisCache
		logger.Info().Str("addr", cfg.Cache.Redis.Address).Msg("redis cache connected")
	}

	// Repositories and services
	msgRepo := repository.NewGormMessageRepository(db)
	fileRepo := repository.NewGormFileRepository(db)

	wsHub := hub.NewHub(cfg.WebSocket)
	go wsHub.Run()

	chatSvc := service.NewChatService(msgRepo, wsHub, msgCache, cfg.Cache.TTL)
	fileSvc := service.NewFileService(store, fileRepo)

	// HTTP surface
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(logger))

	handler.NewHTTPHandler(chatSvc, fileSvc, cfg.Upload).RegisterRoutes(r)
	handler.NewWSHandler(wsHub, chatSvc, cfg.WebSocket).RegisterRoutes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
