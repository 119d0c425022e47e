package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/lead-management/internal"
	"github.com/frahmantamala/lead-management/internal/analytics"
	"github.com/frahmantamala/lead-management/internal/audit"
	auditPostgres "github.com/frahmantamala/lead-management/internal/audit/postgres"
	"github.com/frahmantamala/lead-management/internal/auth"
	authPostgres "github.com/frahmantamala/lead-management/internal/auth/postgres"
	"github.com/frahmantamala/lead-management/internal/core/events"
	"github.com/frahmantamala/lead-management/internal/lead"
	leadPostgres "github.com/frahmantamala/lead-management/internal/lead/postgres"
	"github.com/frahmantamala/lead-management/internal/transport/rest"
	"github.com/frahmantamala/lead-management/internal/transport/swagger"
	"github.com/frahmantamala/lead-management/internal/user"
	userPostgres "github.com/frahmantamala/lead-management/internal/user/postgres"
	"github.com/frahmantamala/lead-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config

	// The server refuses to start when the published API document is broken.
	specPath := cfg.Server.OpenAPISpecPath
	if specPath == "" {
		specPath = "./api/openapi.yml"
	}
	if _, err := swagger.LoadSpec(context.Background(), specPath); err != nil {
		return err
	}

	eventBus := events.NewEventBus(deps.Logger)

	// Repositories
	leadRepo := leadPostgres.NewLeadRepository(deps.GormDB)
	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	authRepo := authPostgres.NewRepository(deps.GormDB)
	auditRepo := auditPostgres.NewActivityRepository(deps.GormDB)

	// Services
	userService := user.NewService(userRepo, auth.HashPassword, cfg.Security.BCryptCost, deps.Logger)
	leadService := lead.NewService(leadRepo, userService, eventBus, deps.Logger)
	analyticsService := analytics.NewService(leadRepo, userService, deps.Logger)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen)

	// Audit trail rides the event bus, off the request path.
	recorder := audit.NewRecorder(auditRepo, deps.Logger)
	recorder.Register(eventBus)

	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		DB:               deps.DB.DB,
		AuthHandler:      auth.NewHandler(authService),
		UserHandler:      user.NewHandler(userService),
		LeadHandler:      lead.NewHandler(leadService),
		AnalyticsHandler: analytics.NewHandler(analyticsService),
		AuditHandler:     audit.NewHandler(recorder, leadService),
		OpenAPISpecPath:  specPath,
		Logger:           deps.Logger,
	})

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
