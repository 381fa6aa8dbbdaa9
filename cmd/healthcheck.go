package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/internal/chart"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
	healthcheckOffline bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

const pingTimeout = 5 * time.Second

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that completion-estimator can run",
	Long: `Check the health of completion-estimator by verifying:
  • The configuration is valid
  • The run history database opens
  • Charts render in both SVG and PNG (fonts load)
  • The analysis service answers (skip with --offline)

This command is useful for debugging setup issues, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0

		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 Completion Estimator Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Checking configuration..."))
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration is valid"))
		if healthcheckVerbose {
			path := configPath
			if path == "" {
				path = internal.DefaultConfigPath()
			}
			_, _ = fmt.Fprintf(out, "   Config file: %s\n", path)
			_, _ = fmt.Fprintf(out, "   Backend: %s\n", cfg.BackendURL)
			_, _ = fmt.Fprintf(out, "   Chunk size: %d words\n", cfg.ChunkSize)
			_, _ = fmt.Fprintf(out, "   Request timeout: %s\n", cfg.RequestTimeout)
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: History
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Opening run history..."))
		if n, err := checkHistory(cmd.Context()); err != nil {
			failed++
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Run history unavailable:"), err)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Run history opened (%d run(s))", n)))
			if healthcheckVerbose {
				_, _ = fmt.Fprintf(out, "   Database: %s\n", cfg.HistoryPath)
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: Charts
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Rendering sample charts..."))
		if err := checkCharts(); err != nil {
			failed++
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Chart rendering failed:"), err)
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ SVG and PNG charts render"))
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: Analysis service
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Contacting analysis service..."))
		if healthcheckOffline {
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Skipped (--offline)"))
		} else if err := checkBackend(cmd.Context()); err != nil {
			failed++
			_, _ = fmt.Fprintln(out, errorStyle.Render("❌ Analysis service unreachable:"), err)
			if healthcheckVerbose {
				_, _ = fmt.Fprintln(out, "   Set backend_url in the config, COMPLETION_BACKEND_URL or --backend")
			}
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Analysis service answers at %s", cfg.BackendURL)))
		}
		_, _ = fmt.Fprintln(out)

		// Summary
		_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(out)
		if failed > 0 {
			_, _ = fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ Health check failed (%d check(s))", failed)))
			return fmt.Errorf("health check failed: %d check(s) did not pass", failed)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func checkHistory(ctx context.Context) (int, error) {
	history, err := openHistory()
	if err != nil {
		return 0, err
	}
	defer history.Close()

	runs, err := history.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	return len(runs), nil
}

func checkCharts() error {
	series := internal.Integrate(internal.NewSeries(), internal.AnalysisResult{
		ChunkNumber:        1,
		CumulativeKeywords: 1,
		KDR:                1,
	})
	for _, format := range []string{chart.FormatSVG, chart.FormatPNG} {
		d := newDashboard("", format)
		if _, err := d.RenderChart(io.Discard, chart.ChartKDR, series); err != nil {
			return fmt.Errorf("%s: %w", format, err)
		}
	}
	return nil
}

func checkBackend(ctx context.Context) error {
	analyzer, err := internal.NewHTTPAnalyzer(cfg.BackendURL, pingTimeout)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return analyzer.Ping(ctx)
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "details", "d", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().BoolVar(&healthcheckOffline, "offline", false, "Skip contacting the analysis service")
}
