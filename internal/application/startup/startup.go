// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/application/container"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/advent-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/advent-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `

  ▄▄▄  ▄▄▄ ▄  ▄ ▄▄▄ ▄  ▄ ▄▄▄▄▄
  ▄▄▄█ █ █ █  █ █▄▄ █▀▄█   █
  █▄▄█ █▄█ ▀▄▄▀ █▄▄ █ ▀█   █
` + "\033[97m" + `
  made by At Risk Media
` + "\033[0m")

	// Step 1: Initialize structured logging
	log.Println("Initializing channeled logger...")
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Startup().Info("Channeled logging active")

	// Step 2: Open the local database
	logger.Startup().Info("Opening local database", "driver", config.DBDriver, "path", config.DBPath)
	db, err := database.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Step 3: Ensure the schema exists
	logger.Startup().Info("Creating database schema...")
	if err := database.NewTableCreator().CreateSchema(db.DB); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	// Step 4: Start performance tracking
	logger.Startup().Info("Starting performance tracker...")
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				perfTracker.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	// Step 5: Create dependency injection container
	logger.Startup().Info("Initializing dependency injection container...")
	appContainer := container.NewContainer(db, logger, perfTracker)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 6: Start the draw event broadcaster
	logger.Startup().Info("Starting draw event broadcaster...")
	go appContainer.Broadcaster.Run()

	// Step 7: Probe the remote attempt store (informational only)
	status := appContainer.StoreService.Status(ctx)
	if status.Reachable {
		logger.Startup().Info("Remote attempt store reachable", "documentId", status.DocumentID, "authOk", status.AuthOK)
	} else {
		logger.Startup().Warn("Remote attempt store not reachable, fallback tiers will serve checks", "error", status.Error)
	}

	// Step 8: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	startServerTime := time.Now()

	port := config.Port
	httpServer := server.New(port, appContainer)

	logger.Startup().Info("HTTP server initialized", "port", port, "duration", time.Since(startServerTime))

	// Step 9: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	totalStartupTime := time.Since(start)
	logger.Startup().Info("Application startup complete",
		"totalDuration", totalStartupTime,
		"storeReachable", status.Reachable,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Cancel background tasks
	cancelBackgroundTasks()

	// Stop server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	// Close the database
	logger.Shutdown().Info("Closing database...")
	if err := db.Close(); err != nil {
		logger.Shutdown().Error("Error closing database", "error", err.Error())
	} else {
		logger.Shutdown().Info("Database closed successfully")
	}

	elapsed := time.Since(start)
	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", elapsed,
		"shutdownDuration", time.Since(shutdownStart))

	return logger.Close()
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
