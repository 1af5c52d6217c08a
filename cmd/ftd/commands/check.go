package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/store"
	"github.com/bondquant/ftdfeed/pkg/config"
	"github.com/bondquant/ftdfeed/pkg/database"
	"github.com/bondquant/ftdfeed/pkg/redis"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [period]",
	Short: "Run the quality gate over ingested periods",
	Long: `Computes quality snapshots for ingested periods and prints the
results. Without an argument every ingested period is checked; with a
period label only that period is checked.

Example:
  go run ./cmd/ftd check
  go run ./cmd/ftd check 20101031`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FTD Feed Quality Check ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 3. Connect to redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 4. Create repository and quality gate
	repo := store.NewRepository(db.Pool, redis.NewCache(redisClient, "ftd"))
	qualityConfig := store.DefaultQualityConfig()
	gate := store.NewQualityGate(repo, qualityConfig)

	ctx := context.Background()

	var labels []string
	if len(args) == 1 {
		labels = args
	} else {
		periods, err := repo.IngestedPeriods(ctx)
		if err != nil {
			return fmt.Errorf("list ingested periods: %w", err)
		}
		for _, p := range periods {
			labels = append(labels, p.Label)
		}
	}

	if len(labels) == 0 {
		fmt.Println("No ingested periods to check")
		return nil
	}

	var invalid int
	for _, label := range labels {
		snapshot, err := gate.Check(ctx, label)
		if err != nil {
			return fmt.Errorf("check period %s: %w", label, err)
		}
		if err := gate.SaveSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("save snapshot for %s: %w", label, err)
		}

		status := "PASS"
		if !snapshot.IsValid(qualityConfig) {
			status = "FAIL"
			invalid++
		}

		fmt.Printf("%s %s  score=%.2f coverage=%.2f zero_price=%.3f outliers=%.3f rows=%d\n",
			status, label, snapshot.QualityScore, snapshot.SymbolCoverage,
			snapshot.ZeroPriceShare, snapshot.OutlierShare, snapshot.TotalRows)
	}

	fmt.Printf("\nChecked %d periods, %d failed the gate\n", len(labels), invalid)

	if invalid > 0 {
		return fmt.Errorf("%d periods failed the quality gate", invalid)
	}
	return nil
}
