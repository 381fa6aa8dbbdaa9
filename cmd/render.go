package cmd

import (
	"fmt"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/spf13/cobra"
)

var (
	renderRun    string
	renderOutput string
	renderFormat string
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Re-render the charts of a stored run",
	Long: `Draw the cumulative keywords, keyword discovery rate and entity-relation
charts of a run from the history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if renderRun == "" {
			return fmt.Errorf("--run is required (use 'completion-estimator history' to see stored runs)")
		}

		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		report, err := history.Load(cmd.Context(), renderRun)
		if err != nil {
			return err
		}
		if report.Series.Len() == 0 {
			internal.PrintWarning(fmt.Sprintf("Run %s has no analyzed chunks; nothing to draw", report.ShortID()))
			return nil
		}

		dashboard := newDashboard(renderOutput, renderFormat)
		paths, err := dashboard.Render(cmd.Context(), report.Series)
		if err != nil {
			return err
		}

		for _, p := range paths {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		internal.LogInfo("Rendered %d chart(s) for run %s", len(paths), report.ShortID())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderRun, "run", "", "Run ID (a unique prefix is enough)")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output directory (default from config)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "Chart format, svg or png (default from config)")
}
