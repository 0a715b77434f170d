// Package main is the entry point for the travel guide client.
// Its sole responsibility is wiring dependencies together and starting the
// shell API. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/travel-guide/internal/alert"
	"github.com/pkordes/travel-guide/internal/auth"
	"github.com/pkordes/travel-guide/internal/config"
	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/guide"
	"github.com/pkordes/travel-guide/internal/handler"
	"github.com/pkordes/travel-guide/internal/identity"
	"github.com/pkordes/travel-guide/internal/maps"
	"github.com/pkordes/travel-guide/internal/middleware"
	"github.com/pkordes/travel-guide/internal/places"
	"github.com/pkordes/travel-guide/internal/remote"
	"github.com/pkordes/travel-guide/internal/repo"
	"github.com/pkordes/travel-guide/internal/route"
	"github.com/pkordes/travel-guide/internal/session"
	"github.com/pkordes/travel-guide/internal/ui"
	"github.com/pkordes/travel-guide/internal/view"
	"github.com/pkordes/travel-guide/migrations"
)

const (
	maxBodyBytes   = 1 << 20
	restoreTimeout = 10 * time.Second
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not read .env", "error", err)
	}

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Profile store ----------------------------------------------------
	profiles, closeProfiles := openProfiles(ctx, cfg.DatabaseURL, logger)
	defer closeProfiles()

	// --- Client state -----------------------------------------------------
	state := ui.NewContainer()
	coordinator := view.NewCoordinator(state)
	alerts := alert.NewPresenter(state, logger)

	sessions := session.NewStore(profiles, logger)
	sessions.Subscribe(func(_, next *domain.Session) { coordinator.ApplySession(next) })
	go sessions.Run(ctx)

	// --- Adapters ---------------------------------------------------------
	consent := identity.NewGoogleConsent(cfg.GoogleClientID, cfg.GoogleClientSecret, logger)
	idp := identity.NewClient(identity.Config{
		APIKey:       cfg.AuthAPIKey,
		AuthBaseURL:  cfg.AuthBaseURL,
		TokenBaseURL: cfg.TokenBaseURL,
	}, sessions, identity.NewFileStore(cfg.CredentialsFile), logger, identity.WithConsent(consent))

	directions, err := maps.NewDirections(cfg.MapsAPIKey)
	if err != nil {
		slog.Error("failed to create directions client", "error", err)
		os.Exit(1)
	}

	api, err := remote.New(cfg.APIBaseURL, logger, remote.WithRateLimit(cfg.APIRateLimit, 1))
	if err != nil {
		slog.Error("failed to create backend client", "error", err)
		os.Exit(1)
	}

	// --- Controllers ------------------------------------------------------
	authCtl := auth.NewController(idp, profiles, sessions, coordinator, alerts, logger)
	routes := route.NewBuilder(directions, state, logger)
	placesCtl := places.NewController(api, api, routes, state, alerts, logger)
	guideFlow := guide.NewFlow(sessions, coordinator, api, state, alerts, logger)

	restoreCtx, cancelRestore := context.WithTimeout(ctx, restoreTimeout)
	if err := idp.Restore(restoreCtx); err != nil {
		slog.Warn("session not restored", "error", err)
	}
	cancelRestore()

	// --- Router -----------------------------------------------------------
	srv := handler.NewServer(handler.Deps{
		Auth:   authCtl,
		Nav:    coordinator,
		Places: placesCtl,
		Guide:  guideFlow,
		Alerts: alerts,
		State:  state,
		Log:    logger,
	})

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewRateLimiter(cfg.ShellRateLimit, int(cfg.ShellRateLimit)+1))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// No write timeout: /events and /auth/google stay open for minutes.
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openProfiles connects to Postgres and brings the schema up to date. With
// no DATABASE_URL, or when either step fails, profiles live in memory for
// this run.
func openProfiles(ctx context.Context, dsn string, logger *slog.Logger) (repo.ProfileRepo, func()) {
	if dsn == "" {
		logger.Warn("DATABASE_URL not set; profiles are kept in memory")
		return repo.NewMemoryProfileRepo(), func() {}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Warn("profile store unavailable; profiles are kept in memory", "error", err)
		return repo.NewMemoryProfileRepo(), func() {}
	}
	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		logger.Warn("profile store unavailable; profiles are kept in memory", "error", err)
		return repo.NewMemoryProfileRepo(), func() {}
	}

	logger.Info("profile store ready")
	return repo.NewProfileRepo(pool), pool.Close
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
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
		slog.Info("migration applied", "version", res.Source.Version, "duration_ms", res.Duration.Milliseconds())
	}
	return nil
}
