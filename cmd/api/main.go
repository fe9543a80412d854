// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fiscaldesk/internal/account"
	"fiscaldesk/internal/admin"
	"fiscaldesk/internal/client"
	"fiscaldesk/internal/config"
	"fiscaldesk/internal/core"
	"fiscaldesk/internal/health"
	"fiscaldesk/internal/middleware"
	"fiscaldesk/internal/portal"
	"fiscaldesk/internal/server"
	"fiscaldesk/internal/session"
	"fiscaldesk/internal/sheet"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	seedAdmin := flag.Bool("seed-admin", false,
		"create the admin account from ADMIN_EMAIL/ADMIN_NAME/ADMIN_PASSWORD and exit")
	generateKeys := flag.Bool("generate-keys", false,
		"generate the ES256 signing key pair and exit")
	flag.Parse()

	if err := run(*configPath, *seedAdmin, *generateKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, seedAdmin, generateKeys bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if generateKeys {
		return portal.GenerateKeyPair(
			cfg.JWT.PrivateKeyPath,
			cfg.JWT.PublicKeyPath,
		)
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	accountRepo := account.NewRepository(db.DB)

	if seedAdmin {
		return runSeedAdmin(ctx, accountRepo, logger)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := portal.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	accountSvc := account.NewService(accountRepo)

	gate := session.NewGate(accountRepo)
	sessionHandler := session.NewHandler(gate)

	accountHandler := account.NewHandler(accountSvc, gate)

	portalSvc := portal.NewService(
		accountRepo,
		jwtManager,
		redis.Client,
		cfg.JWT.AccessTokenExpire,
	)
	portalHandler := portal.NewHandler(portalSvc)

	clientRepo := client.NewRepository(db.DB)
	clientSvc := client.NewService(clientRepo)
	clientHandler := client.NewHandler(clientSvc)

	importer := sheet.NewImporter(clientRepo, cfg.Import)
	exporter := sheet.NewExporter(clientRepo, cfg.Import)
	sheetHandler := sheet.NewHandler(importer, exporter)

	healthHandler := health.NewHandler(db, redis, cfg.App.Version)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		PendingAccounts: func(ctx context.Context) (int, error) {
			_, total, err := accountSvc.List(ctx, account.ListAccountsParams{
				Page:     1,
				PageSize: 1,
				Status:   account.StatusPending,
			})
			return total, err
		},
		ClientCount: func(ctx context.Context) (int, error) {
			_, total, err := clientSvc.List(ctx, client.ListClientsParams{
				Page:     1,
				PageSize: 1,
			})
			return total, err
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(portalSvc)
	adminOnly := middleware.RequireAdmin

	loginLimiter := middleware.LoginLimiter(
		redis.Client,
		cfg.Gate.LoginAttempts,
		cfg.Gate.LoginWindow,
	)

	router.Route("/v1", func(r chi.Router) {
		accountHandler.RegisterRoutes(r)
		sessionHandler.RegisterRoutes(r, loginLimiter)

		portalHandler.RegisterRoutes(r, authenticator)

		accountHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)

		clientHandler.RegisterRoutes(r, authenticator)
		sheetHandler.RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// runSeedAdmin creates the first admin account, already APPROVED so it
// can log in and approve everyone else. Safe to re-run.
func runSeedAdmin(
	ctx context.Context,
	repo account.Repository,
	logger *slog.Logger,
) error {
	// accounts are keyed by lowercased email everywhere; normalize here
	// so a mixed-case ADMIN_EMAIL still produces a reachable account
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	name := os.Getenv("ADMIN_NAME")
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" || password == "" {
		return fmt.Errorf("seed-admin requires ADMIN_EMAIL and ADMIN_PASSWORD")
	}
	if name == "" {
		name = "Administrator"
	}

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		logger.Info("admin account already exists", "email", email)
		return nil
	} else if !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("check admin account: %w", err)
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if err := repo.Create(ctx, &account.Account{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Status:       account.StatusApproved,
		Role:         account.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}

	logger.Info("admin account created", "email", email)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
