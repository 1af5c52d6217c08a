package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/api"
	"github.com/bondquant/ftdfeed/internal/api/handlers"
	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/database"
	"github.com/bondquant/ftdfeed/pkg/logger"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                    - Health check
  GET  /api/records/{symbol}      - Fail records for one symbol
  GET  /api/periods               - Ingested periods
  GET  /api/metadata              - Static feed metadata
  GET  /api/quality               - Latest quality snapshots
  GET  /api/jobs                  - Registered jobs
  GET  /api/jobs/{name}/stats     - Job statistics
  POST /api/jobs/{name}/run       - Trigger a job

Example:
  go run ./cmd/ftd serve
  go run ./cmd/ftd serve --port 8080 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "also start the job scheduler")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FTD Feed API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	// 4. Connect to redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 5. Create repository, quality gate, and ensure schema
	repo := store.NewRepository(db.Pool, redis.NewCache(redisClient, "ftd"))
	gate := store.NewQualityGate(repo, store.DefaultQualityConfig())

	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// 6. Create scheduler so the job endpoints can report and trigger
	sched, err := initScheduler(cfg, log, redisClient, repo, gate)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if serveWithScheduler {
		sched.Start()
		defer sched.Stop()
	}

	// 7. Create handlers
	recordHandler := handlers.NewRecordHandler(repo, log)
	periodHandler := handlers.NewPeriodHandler(repo, log)
	qualityHandler := handlers.NewQualityHandler(gate, log)
	jobHandler := handlers.NewJobHandler(sched, log)

	// 8. Create router and server
	limiter := redis.NewRateLimiter(redisClient, "ftd")
	router := api.NewRouter(recordHandler, periodHandler, qualityHandler, jobHandler, limiter, log)
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
