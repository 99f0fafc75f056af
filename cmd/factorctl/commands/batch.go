package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/di"
)

var batchCmd = &cobra.Command{
	Use:   "batch TICKER...",
	Short: "Score a watch list in parallel",
	Long: `Analyzes every ticker with a bounded worker pool (analysis.batch_workers).
A failing ticker is reported in its own row and does not stop the others.

Example:
  factorctl batch AAPL MSFT NVDA
  factorctl batch "AAPL,MSFT" KO --refresh --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var (
	batchLookback int
	batchRefresh  bool
)

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchLookback, "lookback", 0, "lookback window in days (90-3650, default from config)")
	batchCmd.Flags().BoolVar(&batchRefresh, "refresh", false, "bypass cached series, prices and beta")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	analyzer, cleanup, err := di.InitializeAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer cleanup()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	items, err := analyzer.AnalyzeBatch(ctx, args, batchLookback, batchRefresh)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), items)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), RenderBatch(items))
	return err
}
