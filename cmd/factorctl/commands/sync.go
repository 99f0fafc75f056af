package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/di"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror FRED series and Yahoo prices into ClickHouse",
	Long: `Pulls the tracked macro series and the daily prices of the given tickers plus the
market index, and writes them to ClickHouse. With macro.source and market.source set
to clickhouse, analyses then run from the mirror.

Example:
  factorctl sync --tickers AAPL,MSFT
  factorctl sync --tickers NVDA --days 1825`,
	RunE: runSync,
}

var (
	syncTickers []string
	syncDays    int
	syncAsOf    string
)

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringSliceVar(&syncTickers, "tickers", nil, "tickers to mirror besides the market index")
	syncCmd.Flags().IntVar(&syncDays, "days", 800, "days of history to mirror")
	syncCmd.Flags().StringVar(&syncAsOf, "as-of", "", "last day to mirror (YYYY-MM-DD, default today)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	at, err := parseAsOf(syncAsOf)
	if err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now()
	}
	if syncDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	job, cleanup, err := di.InitializeSync(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer cleanup()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	start, end := util.LookbackWindow(at, syncDays)
	rep, err := job.Run(ctx, syncTickers, start, end)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), rep)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), RenderSync(rep))
	return err
}
