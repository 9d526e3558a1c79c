package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/db"
	"github.com/taskpulse-dev/taskpulse/internal/auth"
	"github.com/taskpulse-dev/taskpulse/internal/config"
	"github.com/taskpulse-dev/taskpulse/internal/middleware"
	"github.com/taskpulse-dev/taskpulse/internal/repository"
	"github.com/taskpulse-dev/taskpulse/internal/router"
	"github.com/taskpulse-dev/taskpulse/internal/server"
	"github.com/taskpulse-dev/taskpulse/internal/services"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)

	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	conn, err := db.ConnectDatabase(cfg.DatabaseURL)

	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(conn); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	sqlDB, err := conn.DB()

	if err != nil {
		logger.Fatal("failed to access database pool", zap.Error(err))
	}

	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)

	if err != nil {
		logger.Fatal("failed to configure tokens", zap.Error(err))
	}

	users := repository.NewGormUserRepo(conn)
	tasks := repository.NewGormTaskRepo(conn)
	deliveries := repository.NewGormDeliveryRepo(conn)

	webhook := services.NewWebhookNotifier(cfg.WebhookURL, cfg.NotifierTimeout, deliveries, logger.Named("webhook"))
	if !webhook.Enabled() {
		logger.Warn("NOTIFIER_WEBHOOK_URL not set, task notifications will only reach websocket clients")
	}
	hub := services.NewHub(cfg.AllowedOrigins, logger.Named("hub"))
	notifier := services.NewAsyncNotifier(services.MultiNotifier{hub, webhook}, cfg.NotifierTimeout, logger.Named("notifier"))

	engine := router.NewRouter(router.Dependencies{
		Identity: services.NewIdentityService(users, issuer, logger.Named("identity")),
		Tasks: services.NewTaskService(tasks, users, notifier, services.TaskServiceOptions{
			StrictAssigneeWorkspace: cfg.StrictAssigneeWorkspace,
			RestrictMemberUpdates:   cfg.RestrictMemberUpdates,
		}, logger.Named("tasks")),
		Tokens:         issuer,
		Events:         hub,
		Webhook:        webhook,
		Database:       sqlDB,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPM),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := server.NewHTTPServer(":"+cfg.Port, engine, logger)
	srv.OnShutdown(hub.Close)
	srv.OnShutdown(notifier.Wait)
	srv.OnShutdown(func() { _ = sqlDB.Close() })

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
