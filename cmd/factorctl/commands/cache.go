package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/di"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the series, price and beta cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show hit/miss counters per cache kind",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached entries",
	Long: `Drops cached entries of one kind, or all of them. Hit/miss counters are kept.

Example:
  factorctl cache clear
  factorctl cache clear --kind series`,
	RunE: runCacheClear,
}

var cacheKind string

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().StringVar(&cacheKind, "kind", "all", "series, prices, beta or all")
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	analyzer, cleanup, err := di.InitializeAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer cleanup()

	stats, err := analyzer.CacheStats(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), stats)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), RenderCacheStats(cfg.Cache.Backend, stats))
	return err
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	analyzer, cleanup, err := di.InitializeAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer cleanup()

	if err := analyzer.ClearCache(cmd.Context(), cacheKind); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]string{"cleared": cacheKind})
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s cache (%s)\n", cacheKind, cfg.Cache.Backend)
	return err
}
