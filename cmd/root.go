package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	backendURL string
	cfg        *internal.Config
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "completion-estimator",
	Short: "Estimate how complete a document is by streaming it through an analysis service",
	Long: `Estimate how much of a document's material has already been covered.

The text is split into fixed-size word chunks that are sent one at a time,
in order, to an analysis service. Each response adds a point to four series
(cumulative keywords, keyword discovery rate, estimated value, entity-relation
discoveries) and may report the chunk at which discovery converged.

Quick Start:
  completion-estimator analyze notes.txt           # Stream a file and chart it
  completion-estimator chunk notes.txt             # Preview the chunks offline
  completion-estimator history                     # List stored runs
  completion-estimator serve                       # Host sessions over HTTP

Settings are read from ~/.config/completion-estimator/config.yaml, .env and
COMPLETION_* environment variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := internal.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if backendURL != "" {
			loaded.BackendURL = backendURL
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded

		internal.SetLogLevel(internal.ParseLogLevel(cfg.LogLevel))
		if verbose {
			internal.SetVerbose(true)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openHistory() (*internal.History, error) {
	h, err := internal.OpenHistory(cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return h, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/completion-estimator/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Analysis service URL (overrides config)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
