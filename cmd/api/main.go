// Package main is the entry point for the route contribution API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/dropalong/backend/internal/catalog"
	"github.com/pkordes/dropalong/backend/internal/config"
	"github.com/pkordes/dropalong/backend/internal/handler"
	"github.com/pkordes/dropalong/backend/internal/identity"
	"github.com/pkordes/dropalong/backend/internal/learning"
	"github.com/pkordes/dropalong/backend/internal/matching"
	"github.com/pkordes/dropalong/backend/internal/middleware"
	"github.com/pkordes/dropalong/backend/internal/repo"
	"github.com/pkordes/dropalong/backend/internal/service"
	"github.com/pkordes/dropalong/backend/internal/views"
	"github.com/pkordes/dropalong/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if cfg.MigrateOnStart {
		if err := migrate(ctx, pool); err != nil {
			slog.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// --- Repositories -----------------------------------------------------
	routeRepo := repo.NewRouteRepo(pool)
	suggestionRepo := repo.NewSuggestionRepo(pool)
	incidentRepo := repo.NewIncidentRepo(pool)
	reputationRepo := repo.NewReputationRepo(pool)
	adminRepo := repo.NewAdminRepo(pool)

	for _, id := range cfg.AdminAccountIDs {
		if err := adminRepo.Grant(ctx, id); err != nil {
			slog.Error("failed to grant administrator", "account_id", id, "error", err)
			os.Exit(1)
		}
	}

	// --- Stale view signalling --------------------------------------------
	// Without REDIS_ADDR the bus only notifies this process.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer redisClient.Close()
	}
	bus := views.NewBus(redisClient, logger)

	cache := catalog.NewCache(catalog.NewStoreSource(routeRepo, suggestionRepo), cfg.CatalogCacheTTL)
	bus.OnStale(views.RouteListing, cache.Evict)

	go func() {
		if err := bus.Run(ctx); err != nil {
			slog.Error("stale view subscriber stopped", "error", err)
		}
	}()

	// --- Services ---------------------------------------------------------
	observer := learning.NewLogObserver(logger)
	ledger := service.NewLedgerService(reputationRepo, bus, cfg.AwardPoints)

	srv := handler.NewServer(handler.Services{
		Suggestions: service.NewSuggestionService(suggestionRepo, adminRepo, ledger, bus, observer),
		Incidents:   service.NewIncidentService(incidentRepo, ledger, bus, observer),
		Ledger:      ledger,
		Search:      service.NewSearchService(cache, matching.NewEngine(cfg.FallbackLimit)),
		Stats:       service.NewStatsService(suggestionRepo, incidentRepo, reputationRepo, adminRepo),
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit → identity.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(identity.Middleware([]byte(cfg.JWTSecret)))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// In-flight requests get up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending goose migrations through a database/sql handle
// borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
