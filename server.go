package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notesku_backend/internals/configs"
	database "notesku_backend/internals/databases"
	"notesku_backend/internals/features/catalog/navigator"
	"notesku_backend/internals/features/catalog/repository"
	scheduler "notesku_backend/internals/features/users/auth/scheduler"
	authService "notesku_backend/internals/features/users/auth/service"
	"notesku_backend/internals/features/users/session"
	"notesku_backend/internals/gateway"
	helper "notesku_backend/internals/helpers"
	"notesku_backend/internals/logger"
	"notesku_backend/internals/metrics"
	middlewares "notesku_backend/internals/middlewares"
	routes "notesku_backend/internals/route"
	"notesku_backend/internals/storage"
)

// errorHandler: error yang lolos dari handler tetap keluar sebagai envelope JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	return helper.JsonFailure(c, err, nil)
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	log := logger.Component("server")
	cfg := configs.LoadEnv()

	// 🔌 DB connect + pool + warm-up
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := database.TunePool(db); err != nil {
		return err
	}
	database.WarmUp(db)

	catalog := repository.NewCatalogRepository(db)
	store, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	m := metrics.New()

	auth, err := authService.NewService(db, authService.Config{
		JWTSecret:     cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		AutoConfirm:   cfg.AutoConfirm,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		return err
	}

	nav := navigator.New(catalog)
	registry := session.NewRegistry(func(id uuid.UUID) gateway.Auth {
		return auth.NewClient(id)
	}, nav, cfg.ClientIdleTTL)
	registry.Metrics = m
	registry.MaxClients = cfg.MaxClients
	registry.SetCookieSecret(cfg.ClientCookieSecret)
	defer registry.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ⏱ scheduler setelah DB siap
	registry.StartJanitor(ctx, time.Minute)
	scheduler.StartBlacklistCleanupScheduler(ctx, db, scheduler.CleanupConfig{
		TTLDays:    cfg.BlacklistTTLDays,
		ClientIdle: cfg.ClientIdleTTL,
	})

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		BodyLimit:               cfg.MaxUploadBodySize,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler:            errorHandler,
		// 🔒 Keep-Alive & timeout koneksi server
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	})

	middlewares.SetupMiddlewares(app, middlewares.Options{
		RequestTimeout: cfg.RequestTimeout,
		CorsOrigins:    cfg.CorsOrigins,
		Metrics:        m,
	})

	routes.SetupRoutes(app, routes.Deps{
		Config:    cfg,
		DB:        db,
		Metrics:   m,
		Catalog:   catalog,
		Storage:   store,
		Navigator: nav,
		Auth:      auth,
		Registry:  registry,
	})

	// Start server non-blocking
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.StorageDriver).Msg("✅ listening")
		errCh <- app.Listen("0.0.0.0:" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// graceful shutdown; registry & pool DB ditutup oleh defer
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
