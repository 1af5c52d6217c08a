package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bondquant/ftdfeed/internal/feed"
	"github.com/bondquant/ftdfeed/internal/feedcfg"
	"github.com/bondquant/ftdfeed/pkg/config"
)

// routeCmd represents the route command
var routeCmd = &cobra.Command{
	Use:   "route [timestamp]",
	Short: "Print the archive path for an instant",
	Long: `Resolves an instant to its archive path the way the feed reader
does: the instant is converted to US Eastern and mapped onto that
trading day's archive. The timestamp is RFC3339; without one the
current time is used.

With --line, also parses one raw CSV line under the configured policy
and prints the resulting record.

Example:
  go run ./cmd/ftd route 2010-10-01T14:00:00Z
  go run ./cmd/ftd route 2010-10-01T14:00:00Z --line "20101001|ACNB|500|12.50"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoute,
}

var routeLine string

func init() {
	rootCmd.AddCommand(routeCmd)

	routeCmd.Flags().StringVar(&routeLine, "line", "", "raw CSV line to parse under the configured policy")
}

func runRoute(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Resolve base dir and policy, from the policy file when set
	baseDir := cfg.Feed.DataDir
	policy := feed.LenientPolicy()
	if cfg.Feed.PolicyFile != "" {
		fileCfg, err := feedcfg.Load(cfg.Feed.PolicyFile)
		if err != nil {
			return fmt.Errorf("load policy file: %w", err)
		}
		baseDir = fileCfg.Routing.BaseDir
		policy = fileCfg.Policy()
	}

	// 3. Parse the timestamp
	at := time.Now()
	if len(args) == 1 {
		at, err = time.Parse(time.RFC3339, args[0])
		if err != nil {
			return fmt.Errorf("invalid timestamp (expected RFC3339): %w", err)
		}
	}

	// 4. Route
	router, err := feed.NewRouter(baseDir)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	fmt.Println(router.Route(at))

	// 5. Optionally parse one line
	if routeLine != "" {
		parser, err := feed.NewParser(policy)
		if err != nil {
			return fmt.Errorf("create parser: %w", err)
		}

		record, ok := parser.ParseLine(routeLine)
		if !ok {
			fmt.Println("line rejected")
			return nil
		}
		fmt.Println(record.String())
	}

	return nil
}
