package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/archive"
	"github.com/bondquant/ftdfeed/internal/external/sec"
	"github.com/bondquant/ftdfeed/internal/ingest"
	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/httputil"
	"github.com/bondquant/ftdfeed/pkg/logger"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download SEC archives and rebuild period files",
	Long: `Downloads fails-to-deliver archives from the SEC and rebuilds the
per-period archive tree under the data directory.

This command:
- Discovers archive URLs via the catalog.data.gov harvest index
- Downloads archives not yet recorded in the download ledger
- Repairs and normalizes the raw files into period archives

Use "build" instead to rebuild from raw files already on disk without
downloading.

Example:
  go run ./cmd/ftd sync`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FTD Feed Sync ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Build the sync service
	syncService, redisClient, err := newSyncService(cfg, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	ctx := context.Background()

	summary, err := syncService.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Println("\nSync summary:")
	fmt.Printf("  Downloaded: %d\n", summary.Downloaded)
	fmt.Printf("  Skipped:    %d\n", summary.Skipped)
	fmt.Printf("  Failed:     %d\n", summary.Failed)
	fmt.Printf("  Raw files:  %d\n", summary.RawFiles)
	fmt.Printf("  Periods:    %d\n", summary.Periods)

	return nil
}

// newSyncService wires the SEC client, ledger, and archive builder.
// The caller owns the returned redis client.
func newSyncService(cfg *config.Config, log *logger.Logger) (*ingest.SyncService, *redis.Client, error) {
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	limiter := redis.NewRateLimiter(redisClient, "ftd")

	httpClient := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.SECRateLimit)
	catalogClient := httputil.New(cfg, log).
		WithRateLimiter(limiter, redis.CatalogRateLimit)

	secClient := sec.NewClient(cfg, httpClient, log).
		WithCatalogClient(catalogClient)
	ledger := sec.LoadLedger(cfg.SEC.LedgerPath)
	builder := archive.NewBuilder(archive.ArchiveDir(cfg.Feed.DataDir), log)

	return ingest.NewSyncService(secClient, builder, ledger, log), redisClient, nil
}
