package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/archive"
	"github.com/bondquant/ftdfeed/internal/external/sec"
	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/database"
	"github.com/bondquant/ftdfeed/pkg/logger"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show feed status",
	Long: `Prints the database health, the download ledger size, the period
archives on disk, and the ingested periods.

Example:
  go run ./cmd/ftd status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FTD Feed Status ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 3. Ledger and archives on disk need no connections
	ledger := sec.LoadLedger(cfg.SEC.LedgerPath)
	fmt.Printf("\nDownload ledger: %d archives recorded\n", ledger.Len())

	builder := archive.NewBuilder(archive.ArchiveDir(cfg.Feed.DataDir), log)
	labels, err := builder.PeriodLabels()
	if err != nil {
		fmt.Printf("Period archives: unavailable (%v)\n", err)
	} else {
		fmt.Printf("Period archives: %d on disk\n", len(labels))
		if len(labels) > 0 {
			fmt.Printf("  First: %s\n", labels[0])
			fmt.Printf("  Last:  %s\n", labels[len(labels)-1])
		}
	}

	// 4. Database health
	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("\nDatabase: unreachable (%v)\n", err)
		return nil
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("\nDatabase: health check failed (%v)\n", err)
		return nil
	}
	if !health.Healthy {
		fmt.Printf("\nDatabase: unhealthy (%s)\n", health.Error)
		return nil
	}
	fmt.Printf("\nDatabase: healthy (%.0fms, %d/%d conns)\n",
		float64(health.ResponseTime.Milliseconds()),
		health.Stats.AcquiredConns, health.Stats.MaxConns)

	// 5. Ingested periods
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	repo := store.NewRepository(db.Pool, redis.NewCache(redisClient, "ftd"))

	periods, err := repo.IngestedPeriods(ctx)
	if err != nil {
		fmt.Printf("Ingested periods: unavailable (%v)\n", err)
		return nil
	}

	var rows int
	for _, p := range periods {
		rows += p.RowCount
	}
	fmt.Printf("Ingested periods: %d (%d rows)\n", len(periods), rows)
	if len(periods) > 0 {
		fmt.Printf("  Latest: %s at %s\n", periods[0].Label, periods[0].IngestedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
