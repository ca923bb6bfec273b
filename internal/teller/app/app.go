package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/agent"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	httpapi "github.com/aussiebroadwan/tellerdesk/internal/teller/http"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store/drivers/sqlite"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/tools"
	"github.com/aussiebroadwan/tellerdesk/pkg/cryptox"
	"github.com/aussiebroadwan/tellerdesk/pkg/jwtx"
	"github.com/aussiebroadwan/tellerdesk/pkg/ratelimit"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the teller service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	mfaService          *service.MFAService
	auditService        *service.AuditService
	gatewayService      *service.GatewayService
	conversationService *service.ConversationService
	housekeepingService *service.HousekeepingService

	registry *tools.Registry

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "teller-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSigning(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.bootstrapAdmin(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("teller service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down teller service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("teller service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initSigning sets up the HS256 signer and verifier. Without a configured
// secret an ephemeral one is generated; tokens then do not survive restarts.
func (app *Application) initSigning() error {
	secret := []byte(app.cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate signing secret: %w", err)
		}
		app.logger.Warn("TELLER_JWT_SECRET not set, using an ephemeral signing secret")
	} else if len(secret) < 32 {
		return fmt.Errorf("TELLER_JWT_SECRET must be at least 32 bytes, got %d", len(secret))
	}

	signer, err := jwtx.NewSignerHS256(secret)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %w", err)
	}
	app.signer = signer
	app.verifier = jwtx.NewVerifierHS256(secret, app.cfg.Issuer, app.cfg.Leeway)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	devSubjects := make(map[string]struct{}, len(app.cfg.DevSubjects))
	for _, id := range app.cfg.DevSubjects {
		devSubjects[id] = struct{}{}
	}

	app.tokenService = &service.TokenService{
		Signer:      app.signer,
		Verifier:    app.verifier,
		Store:       app.db,
		Issuer:      app.cfg.Issuer,
		AccessTTL:   app.cfg.AccessTTL,
		RefreshTTL:  app.cfg.RefreshTTL,
		DevMode:     app.cfg.DevMode,
		DevSubjects: devSubjects,
	}

	app.userService = &service.UserService{Store: app.db}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}
	app.auditService = &service.AuditService{Store: app.db}

	accountPattern, err := regexp.Compile(app.cfg.AccountPattern)
	if err != nil {
		return fmt.Errorf("invalid account number pattern: %w", err)
	}
	amountPattern, err := regexp.Compile(app.cfg.AmountPattern)
	if err != nil {
		return fmt.Errorf("invalid amount pattern: %w", err)
	}

	app.registry = tools.NewBankingRegistry(app.db)
	app.gatewayService = &service.GatewayService{
		Tokens:         app.tokenService,
		Limiter:        ratelimit.New(app.cfg.RateLimitRequests, app.cfg.RateLimitWindow),
		Registry:       app.registry,
		Audit:          app.auditService,
		Sanitizer:      &service.Sanitizer{MaxStringLength: app.cfg.MaxStringLength},
		AccountPattern: accountPattern,
		AmountPattern:  amountPattern,
		ToolTimeout:    app.cfg.ToolTimeout,
	}

	var model agent.ModelClient
	if app.cfg.ModelURL != "" {
		model = agent.NewHTTPModelClient(app.cfg.ModelURL, app.cfg.ModelAPIKey, app.cfg.ModelName)
		app.logger.Info("model client configured", "model", app.cfg.ModelName)
	} else {
		model = agent.UnavailableModelClient{}
		app.logger.Warn("TELLER_MODEL_URL not set, chat turns will return a static notice")
	}

	app.conversationService = &service.ConversationService{
		Store:    app.db,
		Handlers: agent.NewStandardRegistry(model, &service.GatewayAdapter{Gateway: app.gatewayService}),
		Audit:    app.auditService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// bootstrapAdmin provisions the first admin user on an empty database so a
// fresh deployment is reachable without manual SQL.
func (app *Application) bootstrapAdmin(ctx context.Context) error {
	empty, err := app.db.Users().IsEmpty(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if !empty {
		return nil
	}

	password := app.cfg.BootstrapPassword
	generated := false
	if password == "" {
		password, err = cryptox.GeneratePassword()
		if err != nil {
			return fmt.Errorf("failed to generate bootstrap password: %w", err)
		}
		generated = true
	}

	user, err := app.userService.CreateUser(
		ctx,
		app.cfg.BootstrapTenant,
		app.cfg.BootstrapUsername,
		password,
		domain.RoleAdmin,
	)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	if generated {
		// Printed once on first boot; rotate it immediately after login.
		app.logger.Info("bootstrap admin created",
			"tenant_id", user.TenantID,
			"username", user.Username,
			"password", password,
		)
	} else {
		app.logger.Info("bootstrap admin created",
			"tenant_id", user.TenantID,
			"username", user.Username,
		)
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	// The token service is the request verifier so revoked tokens are
	// rejected at the middleware, not just inside the gateway.
	router := httpapi.NewRouter(
		app.tokenService,
		BuildVersion,
		app.cfg.AllowedOrigins,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.Registry = app.registry
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.GatewayService = app.gatewayService
	router.ConversationService = app.conversationService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
