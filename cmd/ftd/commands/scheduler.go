package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/archive"
	"github.com/bondquant/ftdfeed/internal/external/sec"
	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/internal/ingest"
	"github.com/bondquant/ftdfeed/internal/scheduler"
	"github.com/bondquant/ftdfeed/internal/scheduler/jobs"
	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/database"
	"github.com/bondquant/ftdfeed/pkg/httputil"
	"github.com/bondquant/ftdfeed/pkg/logger"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon or inspects its jobs.

Registered jobs:
- archive_sync:  daily 06:30 (download new SEC archives)
- ingest:        daily 07:00 (load period archives into Postgres)
- quality_check: daily 07:30 (quality gate over ingested periods)

Example:
  go run ./cmd/ftd scheduler start
  go run ./cmd/ftd scheduler list
  go run ./cmd/ftd scheduler run archive_sync
  go run ./cmd/ftd scheduler status`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobNow,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job execution statistics",
		RunE:  showJobStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FTD Feed Scheduler ===")

	sched, cleanup, err := newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\nScheduler started. Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJobNow(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Printf("Running job: %s\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous; block until interrupted so the job can finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}

func showJobStatus(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	fmt.Println("Job statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stats, err := sched.GetJobStats(jobName)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", stats.JobName)
		fmt.Printf("  Schedule:   %s\n", stats.Schedule)
		fmt.Printf("  Total runs: %d\n", stats.TotalRuns)
		fmt.Printf("  Success:    %d (%.1f%%)\n", stats.SuccessCount, stats.SuccessRate*100)
		fmt.Printf("  Failures:   %d\n", stats.FailureCount)

		if stats.LastRun != nil {
			fmt.Printf("  Last run:   %s\n", stats.LastRun.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

// newScheduler builds the full dependency graph for the scheduler daemon.
// The cleanup function closes the database and redis connections.
func newScheduler() (*scheduler.Scheduler, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cleanup := func() {
		redisClient.Close()
		db.Close()
	}

	// 5. Create repository and quality gate
	repo := store.NewRepository(db.Pool, redis.NewCache(redisClient, "ftd"))
	gate := store.NewQualityGate(repo, store.DefaultQualityConfig())

	sched, err := initScheduler(cfg, log, redisClient, repo, gate)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return sched, cleanup, nil
}

// initScheduler registers the three pipeline jobs on a new scheduler.
func initScheduler(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	repo *store.Repository,
	gate *store.QualityGate,
) (*scheduler.Scheduler, error) {
	// 1. SEC client with per-host rate limits
	limiter := redis.NewRateLimiter(redisClient, "ftd")

	httpClient := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.SECRateLimit)
	catalogClient := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.CatalogRateLimit)

	secClient := sec.NewClient(cfg, httpClient, log).
		WithCatalogClient(catalogClient)

	// 2. Archive builder and download ledger
	builder := archive.NewBuilder(archive.ArchiveDir(cfg.Feed.DataDir), log)
	ledger := sec.LoadLedger(cfg.SEC.LedgerPath)

	// 3. Sync service and ingestor
	syncService := ingest.NewSyncService(secClient, builder, ledger, log)

	parser, err := feed.NewParser(feed.LenientPolicy())
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}
	ingestor := ingest.NewIngestor(repo, builder, parser, log)

	// 4. Scheduler with jobs
	sched := scheduler.New(log)

	qualityConfig := store.DefaultQualityConfig()

	if err := sched.AddJob(jobs.NewArchiveSyncJob(syncService, log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewIngestJob(ingestor, ingest.Config{Workers: cfg.Feed.Workers}, log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewQualityCheckJob(gate, repo, qualityConfig, log)); err != nil {
		return nil, err
	}

	return sched, nil
}
