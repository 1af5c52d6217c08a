package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/archive"
	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/internal/ingest"
	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/database"
	"github.com/bondquant/ftdfeed/pkg/logger"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [period]",
	Short: "Load period archives into the database",
	Long: `Parses the period archives on disk and loads the records into
Postgres. Saves are idempotent upserts, so re-running after a sync only
adds the new rows. A period label limits the run to that one period.

Example:
  go run ./cmd/ftd ingest
  go run ./cmd/ftd ingest 20101031
  go run ./cmd/ftd ingest --workers 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var ingestWorkers int

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "parallel workers (default from FTD_WORKERS)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FTD Feed Ingest ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Connect to redis (no-op client when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 5. Create repository and ensure schema
	repo := store.NewRepository(db.Pool, redis.NewCache(redisClient, "ftd"))

	ctx := context.Background()
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// 6. Create parser and builder
	parser, err := feed.NewParser(feed.LenientPolicy())
	if err != nil {
		return fmt.Errorf("create parser: %w", err)
	}
	builder := archive.NewBuilder(archive.ArchiveDir(cfg.Feed.DataDir), log)

	// 7. Create ingestor
	ingestor := ingest.NewIngestor(repo, builder, parser, log)

	workers := cfg.Feed.Workers
	if ingestWorkers > 0 {
		workers = ingestWorkers
	}

	// Single-period force mode
	if len(args) == 1 {
		rows, err := ingestor.IngestPeriod(ctx, args[0])
		if err != nil {
			return fmt.Errorf("ingest period %s: %w", args[0], err)
		}
		fmt.Printf("Ingested period %s (%d rows)\n", args[0], rows)
		return nil
	}

	results, err := ingestor.IngestAll(ctx, ingest.Config{Workers: workers})
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	var rows, failed int
	for _, r := range results {
		rows += r.Rows
		if r.Error != nil {
			failed++
			fmt.Printf("  FAILED %s: %v\n", r.Period, r.Error)
		}
	}

	fmt.Printf("\nIngested %d periods, %d rows, %d failed\n", len(results)-failed, rows, failed)

	if failed > 0 {
		return fmt.Errorf("%d periods failed", failed)
	}
	return nil
}
