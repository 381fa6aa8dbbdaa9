package cmd

import (
	"fmt"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Tell the analysis service to drop its accumulated state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		analyzer, err := internal.NewHTTPAnalyzer(cfg.BackendURL, cfg.RequestTimeout)
		if err != nil {
			return err
		}

		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Resetting analysis service at %s", cfg.BackendURL), func() error {
			return analyzer.Reset(cmd.Context())
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess("Analysis service reset")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
