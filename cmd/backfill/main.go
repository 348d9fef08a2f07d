package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"truckbay-api/internal/backfill"
	"truckbay-api/internal/client"
	"truckbay-api/internal/config"
	"truckbay-api/internal/database"
	"truckbay-api/internal/repository"
	"truckbay-api/internal/service"
)

func main() {
	// Parse command line flags
	var (
		// Database flags
		dbHost     = flag.String("db-host", getEnv("DB_HOST", "localhost"), "Database host")
		dbPort     = flag.Int("db-port", getEnvInt("DB_PORT", 5432), "Database port")
		dbName     = flag.String("db-name", getEnv("DB_NAME", "truckbay"), "Database name")
		dbUser     = flag.String("db-user", getEnv("DB_USER", "truckbay"), "Database user")
		dbPassword = flag.String("db-password", getEnv("DB_PASSWORD", ""), "Database password")
		dbSSLMode  = flag.String("db-sslmode", getEnv("DB_SSLMODE", "disable"), "Database SSL mode")

		// Registry flags
		nhtsaBaseURL = flag.String("nhtsa-url", getEnv("NHTSA_BASE_URL", "https://vpic.nhtsa.dot.gov/api"), "NHTSA vPIC API base URL")
		epaBaseURL   = flag.String("epa-url", getEnv("EPA_BASE_URL", "https://www.fueleconomy.gov"), "EPA fuel economy API base URL")
		rateLimit    = flag.Float64("rate-limit", 5.0, "Registry requests per second")

		// Backfill flags
		batchSize       = flag.Int("batch-size", 100, "Listings fetched per batch")
		checkpointEvery = flag.Int("checkpoint-every", 50, "Save checkpoint every N listings")
		checkpointFile  = flag.String("checkpoint-file", "backfill_checkpoint.json", "Checkpoint file path")
		resumeFromID    = flag.Int("resume-from", 0, "Resume from specific listing ID")
		retryOnly       = flag.Bool("retry-only", false, "Only retry recorded failures that are due")
		dryRun          = flag.Bool("dry-run", false, "Dry run mode (don't persist results)")
		progressEvery   = flag.Duration("progress-every", 30*time.Second, "Progress log interval")
		logLevel        = flag.String("log-level", getEnv("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	)

	flag.Parse()

	// Validate required flags
	if *dbPassword == "" {
		fmt.Fprintln(os.Stderr, "Error: database password is required (use -db-password or DB_PASSWORD env)")
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(*logLevel)
	slog.SetDefault(logger)

	logger.Info("starting enrichment backfill",
		"db_host", *dbHost,
		"db_port", *dbPort,
		"db_name", *dbName,
		"batch_size", *batchSize,
		"rate_limit", *rateLimit,
		"dry_run", *dryRun,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()

	// Connect to database
	dbConfig := config.DatabaseConfig{
		Host:     *dbHost,
		Port:     *dbPort,
		Name:     *dbName,
		User:     *dbUser,
		Password: *dbPassword,
		SSLMode:  *dbSSLMode,
		MaxConns: 10,
		MinConns: 2,
	}

	dbPool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	logger.Info("connected to database")

	// Run database migrations
	if err := database.RunMigrations(ctx, dbPool); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	// Initialize repositories
	listingRepo := repository.NewListingRepo(dbPool)
	failureRepo := repository.NewEnrichmentFailureRepo(dbPool)

	// Registry clients share one rate limiter so the combined request
	// rate stays within the configured limit
	limiter := client.NewRateLimiter(*rateLimit)
	defer limiter.Stop()

	registryTimeout := 10 * time.Second
	nhtsaClient := client.NewNHTSAClient(*nhtsaBaseURL, registryTimeout, limiter)
	epaClient := client.NewEPAClient(*epaBaseURL, registryTimeout, limiter)

	enrichmentService := service.NewEnrichmentService(nhtsaClient, epaClient)

	runner := backfill.NewRunner(
		listingRepo,
		enrichmentService,
		failureRepo,
		backfill.NewCheckpointManager(*checkpointFile),
		backfill.Options{
			BatchSize:       *batchSize,
			CheckpointEvery: *checkpointEvery,
			ResumeFromID:    *resumeFromID,
			DryRun:          *dryRun,
		},
	)

	// Periodic progress reporting
	go func() {
		ticker := time.NewTicker(*progressEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if runner.Progress == nil {
					continue
				}
				s := runner.Progress.Snapshot()
				logger.Info("backfill progress",
					"processed", s.Processed,
					"total", s.TotalListings,
					"percentage", fmt.Sprintf("%.1f", s.Percentage),
					"current_vin", s.CurrentVIN,
					"remaining", s.Remaining.Round(time.Second).String(),
				)
			}
		}
	}()

	// Run backfill
	run := runner.Run
	if *retryOnly {
		run = runner.RetryDue
	}
	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("backfill cancelled")
			os.Exit(0)
		}
		logger.Error("backfill failed", "error", err)
		os.Exit(1)
	}

	logger.Info("backfill completed successfully")
}

// setupLogger creates a structured logger with the specified level
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}
