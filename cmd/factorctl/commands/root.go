package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/config"
)

var (
	// Global flags
	configFile string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "factorctl",
	Short: "Macro factor impact scoring for equities",
	Long: `factorctl scores how a stock is exposed to the Fed Funds Rate, CPI inflation and
the 10-year Treasury yield, and maps the result to a BUY/HOLD/SELL style signal.

Examples:
  factorctl analyze AAPL
  factorctl analyze MSFT --lookback 730 --refresh
  factorctl batch AAPL MSFT NVDA --json
  factorctl sync --tickers AAPL,MSFT
  factorctl cache stats
  factorctl cache clear --kind beta`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (defaults plus environment when empty)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

// loadConfig reads configuration for a CLI run. Logs go to stderr so stdout stays parseable.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configFile)
	if err != nil {
		return nil, err
	}
	cfg.Log.Output = "stderr"
	if verbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	// one-shot runs do not serve /metrics
	cfg.Metrics.Disabled = true
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
