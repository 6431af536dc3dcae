package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/romay-erp/romay/internal/app"
	"github.com/romay-erp/romay/internal/auth"
	"github.com/romay-erp/romay/internal/capability"
	caphttp "github.com/romay-erp/romay/internal/capability/http"
	"github.com/romay-erp/romay/internal/guard"
	"github.com/romay-erp/romay/internal/observability"
	"github.com/romay-erp/romay/internal/platform/cache"
	"github.com/romay-erp/romay/internal/platform/db"
	"github.com/romay-erp/romay/internal/session"
	"github.com/romay-erp/romay/internal/users"
	"github.com/romay-erp/romay/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := session.NewManager(session.ManagerConfig{
		Redis:           redisClient,
		Secret:          cfg.TokenSecret,
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		IdentityTimeout: cfg.IdentityTimeout,
		Logger:          logger,
	})
	auditTrail := session.NewAuditTrail(pool)

	userRepo := users.NewRepository(pool)
	authService := auth.NewService(userRepo, sessionManager, auditTrail, logger)
	authHandler := auth.NewHandler(logger, authService, cfg.IsProduction())

	capResolver := capability.NewResolver(logger)
	capHandler := caphttp.NewHandler(logger, capResolver)

	routeGuard := guard.New(sessionManager, logger, cfg.IsProduction())
	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Guard:             routeGuard,
		AuthHandler:       authHandler,
		CapabilityHandler: capHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
