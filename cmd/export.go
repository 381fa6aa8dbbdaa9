package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	runID     string
	exportLimit int
)

var timeNow = time.Now

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to file",
	Long: `Export runs from the history to various formats (jsonl, md, yaml, json).

You can export every stored run or a specific run by ID (a unique prefix is
enough). Use 'completion-estimator history' to see available run IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate the format before touching the history
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		ctx := cmd.Context()
		var reports []*internal.Report
		if runID != "" {
			report, err := history.Load(ctx, runID)
			if err != nil {
				return fmt.Errorf("%w (use 'completion-estimator history' to see stored runs)", err)
			}
			reports = append(reports, report)
		} else {
			runs, err := history.List(ctx, exportLimit)
			if err != nil {
				return err
			}
			for _, run := range runs {
				report, err := history.Load(ctx, run.ID)
				if err != nil {
					internal.LogWarn("Skipping run %s: %v", run.ID, err)
					continue
				}
				reports = append(reports, report)
			}
		}

		if len(reports) == 0 {
			internal.PrintWarning("No runs to export")
			return nil
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		err = internal.ShowProgress(ctx, fmt.Sprintf("Exporting %d run(s) to %s", len(reports), outputDir), func() error {
			for _, report := range reports {
				path := filepath.Join(outputDir, reportFileName(report, exporter.Extension()))
				if err := exportTo(exporter, report, format, path); err != nil {
					internal.LogError("%v", err)
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %d run(s) exported to %s", exported, outputDir))
		return nil
	},
}

func reportFileName(report *internal.Report, ext string) string {
	return fmt.Sprintf("run_%s.%s", report.ShortID(), ext)
}

// writeReport exports report in format to path, or to run_<id>.<ext> in the
// working directory when path is empty. It returns the written path.
func writeReport(report *internal.Report, format, path string) (string, error) {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = reportFileName(report, exporter.Extension())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", &internal.ExportError{Format: format, Path: path, Err: err}
		}
	}
	if err := exportTo(exporter, report, format, path); err != nil {
		return "", err
	}
	return path, nil
}

func exportTo(exporter export.Exporter, report *internal.Report, format, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(report, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&runID, "run", "", "Export a specific run by ID")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "Export at most this many recent runs (0 for all)")
}
