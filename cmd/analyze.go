package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/internal/chart"
	"github.com/spf13/cobra"
)

var (
	analyzeText      string
	analyzeOut       string
	analyzeFormat    string
	analyzeReport    string
	analyzeChunkSize int
	analyzeNoCharts  bool
	analyzeNoHistory bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Stream a document through the analysis service",
	Long: `Reset the analysis service, split the document into chunks and submit
them one at a time, in order. Each chunk's estimated value is printed as it
arrives, the charts are redrawn after every chunk and the run is recorded in
the history.

When a chunk fails the run stops at that chunk; nothing after it is sent.

Examples:
  completion-estimator analyze notes.txt
  cat notes.txt | completion-estimator analyze -
  completion-estimator analyze --text "a short document" --format md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(args, analyzeText, cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		analyzer, err := internal.NewHTTPAnalyzer(cfg.BackendURL, cfg.RequestTimeout)
		if err != nil {
			return err
		}

		chunkSize := cfg.ChunkSize
		if analyzeChunkSize > 0 {
			chunkSize = analyzeChunkSize
		}

		seq := internal.NewSequencer(analyzer,
			internal.WithChunkSize(chunkSize),
			internal.WithStepTimeout(cfg.RequestTimeout),
			internal.WithObserver(internal.NewChunkPrinter(cmd.OutOrStdout())),
		)

		var dashboard *chart.Dashboard
		if !analyzeNoCharts {
			dashboard = newDashboard(analyzeOut, "")
			seq.AddObserver(dashboard.ObserveRun(ctx))
		}

		if !analyzeNoHistory {
			history, err := openHistory()
			if err != nil {
				return err
			}
			defer history.Close()
			seq.AddObserver(history.Recorder(ctx, chunkSize, cfg.KDRThreshold))
		}

		err = internal.ShowProgress(ctx, fmt.Sprintf("Resetting analysis service at %s", cfg.BackendURL), func() error {
			_, err := seq.Analyze(ctx, text)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}

		runErr := seq.Run(ctx)
		snap := seq.Snapshot()

		if analyzeFormat != "" {
			report := internal.NewReport(snap, chunkSize, cfg.KDRThreshold, timeNow())
			path, err := writeReport(report, analyzeFormat, analyzeReport)
			if err != nil {
				return err
			}
			internal.PrintInfo(fmt.Sprintf("Report written to %s", path))
		}

		if runErr != nil {
			return fmt.Errorf("run stopped at chunk %d of %d: %w", snap.Cursor+1, snap.ChunkCount, runErr)
		}

		if dashboard != nil && snap.Series.Len() > 0 {
			internal.PrintInfo(fmt.Sprintf("Charts written to %s", dashboard.Dir))
		}
		internal.PrintSuccess(fmt.Sprintf("Run %s complete: %d chunk(s) analyzed", shortID(snap.RunID), snap.Cursor))
		return nil
	},
}

// newDashboard builds a dashboard from the chart settings. Empty arguments
// keep the configured values.
func newDashboard(dir, format string) *chart.Dashboard {
	if dir == "" {
		dir = cfg.Chart.Dir
	}
	if format == "" {
		format = cfg.Chart.Format
	}
	return &chart.Dashboard{
		Dir:       dir,
		Format:    format,
		Width:     cfg.Chart.Width,
		Height:    cfg.Chart.Height,
		Threshold: cfg.KDRThreshold,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeText, "text", "t", "", "Analyze this text instead of a file")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Chart output directory (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "Also export the run report (jsonl, md, yaml, json)")
	analyzeCmd.Flags().StringVar(&analyzeReport, "report", "", "Report file path (default run_<id>.<ext>)")
	analyzeCmd.Flags().IntVar(&analyzeChunkSize, "chunk-size", 0, "Words per chunk (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeNoCharts, "no-charts", false, "Do not render charts")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false, "Do not record the run in the history")
}
