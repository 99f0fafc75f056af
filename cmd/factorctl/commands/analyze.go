package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/di"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/usecase"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER",
	Short: "Score one ticker against the macro factors",
	Long: `Fetches FEDFUNDS, CPIAUCSL and DGS10 plus daily prices for the ticker and the
market index, estimates beta and prints the composite score, signal and rationale.

Example:
  factorctl analyze AAPL
  factorctl analyze BRK.B --as-of 2024-06-28 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	lookbackDays int
	refresh      bool
	asOf         string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&lookbackDays, "lookback", 0, "lookback window in days (90-3650, default from config)")
	analyzeCmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached series, prices and beta")
	analyzeCmd.Flags().StringVar(&asOf, "as-of", "", "analysis end date (YYYY-MM-DD, default today)")
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(util.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	at, err := parseAsOf(asOf)
	if err != nil {
		return err
	}
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

	res, err := analyzer.Analyze(ctx, usecase.AnalyzeParams{
		Ticker:       args[0],
		LookbackDays: lookbackDays,
		Refresh:      refresh,
		AsOf:         at,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), RenderResult(res))
	return err
}
