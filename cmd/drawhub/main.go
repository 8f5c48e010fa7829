// DrawHub Core - Collaborative Diagram Backend
//
// This is the main entry point for the DrawHub Core application.
// DrawHub is the persistence and authorization backend for a
// collaborative diagramming frontend:
//   - JWT-based authentication with role-based access control
//   - Room-scoped sharing via per-user access grants
//   - Versioned diagram documents stored in SQLite
//   - Single-binary deployment with zero external services
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/drawhub/drawhub-core/migrations"

	"github.com/drawhub/drawhub-core/internal/api"
	"github.com/drawhub/drawhub-core/internal/audit"
	"github.com/drawhub/drawhub-core/internal/auth"
	"github.com/drawhub/drawhub-core/internal/diagram"
	"github.com/drawhub/drawhub-core/internal/infrastructure/config"
	"github.com/drawhub/drawhub-core/internal/infrastructure/database"
	"github.com/drawhub/drawhub-core/internal/infrastructure/logging"
	"github.com/drawhub/drawhub-core/internal/room"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// healthCheckTimeout bounds the post-startup infrastructure probe.
const healthCheckTimeout = 5 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	// This is the Go pattern for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting DrawHub Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build repositories
	userRepo := auth.NewUserRepository(db.DB)
	accessRepo := auth.NewRoomAccessRepository(db.DB)
	roomRepo := room.NewSQLiteRepository(db.DB)
	diagramRepo := diagram.NewSQLiteRepository(db.DB)
	auditRepo := audit.NewSQLiteRepository(db.DB)

	// Bootstrap the admin account (idempotent, skipped when unconfigured)
	created, seedErr := auth.SeedAdmin(ctx,
		userRepo,
		cfg.Admin.Email,
		cfg.Admin.Password,
		cfg.Admin.DisplayName,
		log.Logger,
	)
	if seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}
	if created {
		log.Info("admin account created", "email", cfg.Admin.Email)
	}

	// Create and start the API server
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		Security:    cfg.Security,
		Logger:      log,
		UserRepo:    userRepo,
		AccessRepo:  accessRepo,
		RoomRepo:    roomRepo,
		DiagramRepo: diagramRepo,
		AuditRepo:   auditRepo,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify infrastructure is healthy before declaring readiness
	if healthErr := healthCheck(ctx, db); healthErr != nil {
		return fmt.Errorf("health check failed: %w", healthErr)
	}

	log.Info("DrawHub Core started successfully")

	// Block until shutdown signal
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the configuration file path.
// Uses DRAWHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DRAWHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//
// Returns:
//   - error: nil if healthy, or error describing the failure
func healthCheck(ctx context.Context, db *database.DB) error {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := db.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	return nil
}
