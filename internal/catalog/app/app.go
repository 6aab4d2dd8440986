package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/coursehub/internal/catalog/http"
	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store/drivers/postgres"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store/drivers/sqlite"
	"github.com/aussiebroadwan/coursehub/pkg/cryptox"
	"github.com/aussiebroadwan/coursehub/pkg/jwtx"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"

	cookieIssuer = "coursehub"
)

// Application owns every long-lived dependency: the store (which also holds
// the sessions), the services and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	credentialService   *service.CredentialService
	sessionService      *service.SessionService
	authService         *service.AuthService
	courseService       *service.CourseService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "coursehub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seed(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	return app, nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run blocks until the server fails or a shutdown signal arrives.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("coursehub starting", "port", app.cfg.Port, "version", BuildVersion, "driver", app.cfg.DatabaseDriver)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// Shutdown drains the server, stops housekeeping and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down coursehub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("coursehub stopped")
	return nil
}

func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initServices() {
	app.credentialService = &service.CredentialService{Store: app.db}
	app.sessionService = &service.SessionService{Store: app.db, TTL: app.cfg.SessionTTL}
	app.authService = &service.AuthService{
		Credentials: app.credentialService,
		Sessions:    app.sessionService,
	}
	app.courseService = &service.CourseService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) seed() error {
	if app.cfg.SeedFile == "" {
		return nil
	}

	f, err := LoadSeedFile(app.cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	n, err := ApplySeed(context.Background(), app.db, f, app.logger)
	if err != nil {
		return fmt.Errorf("failed to apply seed file: %w", err)
	}

	app.logger.Info("seed file applied", "file", app.cfg.SeedFile, "created", n, "listed", len(f.Users))
	return nil
}

func (app *Application) sessionSecret() ([]byte, error) {
	if app.cfg.SessionSecret != "" {
		return []byte(app.cfg.SessionSecret), nil
	}

	// Validate already refused this in prod.
	secret, err := cryptox.GenerateToken(jwtx.MinSecretLength)
	if err != nil {
		return nil, err
	}
	app.logger.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	return []byte(secret), nil
}

func (app *Application) initHTTP() error {
	secret, err := app.sessionSecret()
	if err != nil {
		return fmt.Errorf("failed to create session secret: %w", err)
	}
	signer, err := jwtx.NewHS256(secret, cookieIssuer)
	if err != nil {
		return fmt.Errorf("failed to create cookie signer: %w", err)
	}

	views, err := httpapi.NewViews()
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		views,
		&httpapi.SessionCookies{Signer: signer, Secure: app.cfg.CookieSecure},
		app.logger,
	)

	router.CredentialService = app.credentialService
	router.SessionService = app.sessionService
	router.AuthService = app.authService
	router.CourseService = app.courseService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
