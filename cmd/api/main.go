package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/activity"
	"github.com/infinityfire/api/internal/auth"
	"github.com/infinityfire/api/internal/checklist"
	"github.com/infinityfire/api/internal/compliance"
	"github.com/infinityfire/api/internal/config"
	"github.com/infinityfire/api/internal/file"
	"github.com/infinityfire/api/internal/logger"
	"github.com/infinityfire/api/internal/metrics"
	"github.com/infinityfire/api/internal/objectstore"
	"github.com/infinityfire/api/internal/ratelimit"
	"github.com/infinityfire/api/internal/server"
	"github.com/infinityfire/api/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "infinityfire: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	log, err := logger.Init()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	metrics.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Postgres.AutoMigrate {
		if err := storage.Migrate(cfg.Postgres, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.ObjectStore)
	if err != nil {
		return fmt.Errorf("connect object store: %w", err)
	}
	storage.CheckBucket(ctx, minioClient, cfg.ObjectStore.Bucket, log)

	objects := objectstore.NewStore(
		objectstore.NewMinIOBackend(minioClient, cfg.ObjectStore.Bucket),
		cfg.ObjectStore.Bucket,
		cfg.ObjectStore.Region,
		log,
	)

	activityRepo := activity.NewRepository(dbPool)
	activityLogger := activity.NewLogger(activityRepo, log)

	authService := auth.NewService(auth.NewRepository(dbPool), activityLogger, cfg.Auth)
	created, err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info("bootstrap administrator created", zap.String("email", cfg.Auth.BootstrapAdmin.Email))
	}

	fileService := file.NewService(objects, activityLogger, file.ExpiryPolicy{
		Default: cfg.Files.DefaultExpiry,
		Min:     cfg.Files.MinExpiry,
		Max:     cfg.Files.MaxExpiry,
	})

	router := server.NewRouter(server.Dependencies{
		Config:            cfg,
		DB:                dbPool,
		Objects:           objects,
		Limiter:           ratelimit.New(cfg.HTTP.RateLimitMax, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitClients),
		AuthService:       authService,
		FileService:       fileService,
		ActivityService:   activity.NewService(activityRepo),
		ComplianceService: compliance.NewService(compliance.NewRepository(dbPool)),
		ChecklistService:  checklist.NewService(checklist.NewRepository(dbPool), activityLogger),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("InfinityFire API listening", zap.String("addr", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
