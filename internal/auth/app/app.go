// Package app assembles the service: config, logging, storage, services,
// and the HTTP server, with graceful shutdown.
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

	httpapi "github.com/oakmontlabs/gatehouse/internal/auth/http"
	"github.com/oakmontlabs/gatehouse/internal/auth/service"
	"github.com/oakmontlabs/gatehouse/internal/auth/store"
	"github.com/oakmontlabs/gatehouse/internal/auth/store/drivers"
	"github.com/oakmontlabs/gatehouse/internal/auth/store/drivers/redis"
	"github.com/oakmontlabs/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/oakmontlabs/gatehouse/pkg/cryptox"
	"github.com/oakmontlabs/gatehouse/pkg/jwtx"
	"github.com/oakmontlabs/gatehouse/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	tokenStore  store.Tokens
	closeTokens func() error

	tokenService        *service.TokenService
	accountService      *service.AccountService
	permissionService   *service.PermissionService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatehouse",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initTokenStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.bootstrapService.EnsureAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	app.initHTTP()
	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("gatehouse starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
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

// Shutdown gracefully shuts the application down.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gatehouse...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeTokens(); err != nil {
		app.logger.Error("error closing token store", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gatehouse stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initTokenStore() error {
	tokens, closer, err := drivers.NewTokenStore(app.cfg.TokenStoreDriver, app.db, redis.Config{
		Addr:     app.cfg.RedisAddr,
		Username: app.cfg.RedisUsername,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}

	app.tokenStore = tokens
	app.closeTokens = closer
	app.logger.Info("token store initialized", "driver", app.cfg.TokenStoreDriver)
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:  jwtx.NewCodec([]byte(app.cfg.JWTSecret), app.cfg.Issuer),
		Tokens: app.tokenStore,
		TTLs: service.TokenTTLs{
			Access:  app.cfg.AccessTTL,
			Refresh: app.cfg.RefreshTTL,
			Reset:   app.cfg.ResetTTL,
			Verify:  app.cfg.VerifyTTL,
		},
	}

	app.accountService = &service.AccountService{
		Store:  app.db,
		Tokens: app.tokenService,
		Mailer: &service.LogMailer{Logger: app.logger},
	}
	app.permissionService = &service.PermissionService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		AdminEmail:    app.cfg.BootstrapEmail,
		AdminPassword: app.cfg.BootstrapPassword,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.tokenStore,
		app.db.DeviceSessions(),
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SessionRetention,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.PermissionService = app.permissionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
