// Package main is the entry point for the Salak server.
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

	"github.com/redis/go-redis/v9"

	"github.com/neuralarc-ai/salak/internal/config"
	"github.com/neuralarc-ai/salak/internal/database"
	"github.com/neuralarc-ai/salak/internal/handlers"
	"github.com/neuralarc-ai/salak/internal/identity"
	"github.com/neuralarc-ai/salak/internal/logging"
	"github.com/neuralarc-ai/salak/internal/metrics"
	"github.com/neuralarc-ai/salak/internal/services"
	"github.com/neuralarc-ai/salak/internal/supabase"
	"github.com/neuralarc-ai/salak/internal/vault"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.Setup(cfg.Security.LogLevel)

	logger.Info("server_starting",
		"version", version,
		"env", cfg.Security.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("postgres_connected")

	if cfg.Database.RunMigrations {
		logger.Info("running_migrations")
		if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(opt)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("redis_connected")

	// Services
	userService := services.NewUserService(pool)
	keyVault := vault.New(cfg.Vault.MasterSecret)
	keyService := services.NewAPIKeyService(pool, keyVault)
	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	auditService := services.NewAuditService(pool)

	// Identity resolution: hosted sessions first, then self-issued tokens.
	var verifiers []identity.Verifier
	var supabaseClient *supabase.Client
	if cfg.SupabaseEnabled() {
		supabaseClient = supabase.New(cfg.Supabase.URL, cfg.Supabase.AnonKey, cfg.Supabase.Timeout)
		verifiers = append(verifiers, identity.NewSupabaseVerifier(supabaseClient))
	} else {
		logger.Warn("hosted identity provider not configured, supabase sessions will not be accepted")
	}

	jwtVerifier, err := identity.NewJWTVerifier(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Warn("jwt secret not configured, self-issued tokens will not be accepted")
	} else {
		verifiers = append(verifiers, jwtVerifier)
	}

	resolver := identity.NewResolver(userService, verifiers...)

	deps := &handlers.Dependencies{
		Config:        cfg,
		DB:            pool,
		Redis:         redisClient,
		Logger:        logger,
		Resolver:      resolver,
		Supabase:      supabaseClient,
		UserService:   userService,
		APIKeyService: keyService,
		TokenService:  tokenService,
		AuditService:  auditService,
	}

	router := handlers.NewRouter(deps)

	server := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Background tasks
	go auditService.StartCleanup(ctx, cfg.Security.CleanupInterval, cfg.Security.AuditRetention)
	go metrics.StartCollector(ctx, pool, 30*time.Second)

	go func() {
		logger.Info("server_listening", "addr", cfg.ServerAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown_signal_received")
	case <-ctx.Done():
		logger.Info("shutdown_context_canceled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server_stopped")
	return nil
}
