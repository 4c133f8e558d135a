package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tcon/auth-user-service/internal/api"
	"github.com/tcon/auth-user-service/internal/core/ports"
	mongostore "github.com/tcon/auth-user-service/internal/infrastructure/db/mongo"
	redisstore "github.com/tcon/auth-user-service/internal/infrastructure/db/redis"
	"github.com/tcon/auth-user-service/internal/infrastructure/notify"
	"github.com/tcon/auth-user-service/internal/infrastructure/queue"
	"github.com/tcon/auth-user-service/internal/pkg/config"
	"github.com/tcon/auth-user-service/internal/token"
	"github.com/tcon/auth-user-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title        Auth User Service API
// @version      1.0
// @description  Authentication and identity service for the tutoring platform.
// @BasePath     /api
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("configuration failed")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	codec, err := token.NewCodec(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("token codec init failed")
	}

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	var notifier ports.Notifier = notify.NoopNotifier{}
	if cfg.Notifier.URL != "" {
		notifier = notify.NewHTTPNotifier(cfg.Notifier.URL, 0)
	} else {
		log.Warn().Msg("no notification service configured, outbound email disabled")
	}

	var publisher ports.EventPublisher = redisstore.NoopPublisher{}
	if cfg.Events.Stream != "" {
		publisher = redisstore.NewStreamPublisher(rdb, cfg.Events.Stream)
	} else {
		log.Warn().Msg("no event stream configured, event publication disabled")
	}

	dispatcher := queue.NewDispatcher(cfg.Events.Workers, publisher, notifier, cfg.Events.Stream, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, codec, dispatcher, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
