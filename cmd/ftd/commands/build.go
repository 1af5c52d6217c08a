package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/archive"
	"github.com/bondquant/ftdfeed/internal/ingest"
	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/logger"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild period archives from raw files on disk",
	Long: `Repairs and normalizes raw SEC exports already present in the data
directory into per-period archives, without downloading anything.

Runs fully offline, so it needs neither network access nor Redis. Use
this after dropping manually fetched exports into the archive directory,
or to re-merge after a partial sync.

Example:
  go run ./cmd/ftd build`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FTD Archive Build ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	builder := archive.NewBuilder(archive.ArchiveDir(cfg.Feed.DataDir), log)

	// No downloads happen here, so the SEC client and ledger stay nil.
	syncService := ingest.NewSyncService(nil, builder, nil, log)

	periods, rawFiles, err := syncService.BuildFromRaw()
	if err != nil {
		return fmt.Errorf("rebuild from raw: %w", err)
	}

	fmt.Printf("Rebuilt %d periods from %d raw files\n", periods, rawFiles)
	return nil
}
