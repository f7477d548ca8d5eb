// @title                       Sandwich Project Admin API
// @version                     1.0
// @description                 Role-based administration backend for the sandwich project volunteer platform.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sandwichproject/admin-api/internal/api"
	"github.com/sandwichproject/admin-api/internal/api/handler"
	"github.com/sandwichproject/admin-api/internal/core/service"
	mongodb "github.com/sandwichproject/admin-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sandwichproject/admin-api/internal/infrastructure/db/redis"
	"github.com/sandwichproject/admin-api/internal/infrastructure/queue"
	"github.com/sandwichproject/admin-api/internal/pkg/config"
	"github.com/sandwichproject/admin-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "sandwich-admin-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	userRepo := mongodb.NewUserRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, projectRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	userCache := redisdb.NewUserCache(rdb, cfg.UserCacheTTL)
	revocations := redisdb.NewRevocationStore(rdb)

	// --- Audit workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(auditRepo, logger.Component("audit")), logger.Component("audit"))
	dispatcher.Start(workerCtx)

	// --- Services ---
	authService := service.NewAuthService(userRepo, userCache, revocations, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	projectService := service.NewProjectService(projectRepo, dispatcher, logger.Component("projects"))
	userService := service.NewUserService(userRepo, userCache, dispatcher, logger.Component("users"))

	if err := service.NewSeeder(userRepo, projectRepo, logger.Component("seed")).Seed(ctx, service.SeedInput{
		AdminEmail:    cfg.Seed.AdminEmail,
		AdminName:     cfg.Seed.AdminName,
		AdminPassword: cfg.Seed.AdminPassword,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to seed development data")
	}

	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Projects: projectService,
		Users:    userService,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": mongodb.Check(mongoClient),
			"redis":   redisdb.Check(rdb),
		},
		Logger: logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Requests are drained; let the workers flush what is already queued.
	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
}
