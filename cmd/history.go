package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/completion-estimator/internal"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	runMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs",
	Long:  `List the runs recorded in the local history, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		runs, err := history.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		displayRuns(cmd.OutOrStdout(), runs, time.Now())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-chunk results of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		report, err := history.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		displayReport(cmd.OutOrStdout(), report)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := openHistory()
		if err != nil {
			return err
		}
		defer history.Close()

		if err := history.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Deleted run %s", args[0]))
		return nil
	},
}

func displayRuns(out io.Writer, runs []internal.RunSummary, now time.Time) {
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No runs recorded"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d run(s)", len(runs))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("State")+"\t"+titleStyle.Render("Chunks")+"\t"+titleStyle.Render("Convergence")+"\t"+titleStyle.Render("Started")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, run := range runs {
		convergence := dateStyle.Render("—")
		if run.ConvergenceChunk != nil {
			convergence = countStyle.Render(strconv.Itoa(*run.ConvergenceChunk))
		}
		chunks := countStyle.Render(fmt.Sprintf("%d/%d", run.Cursor, run.ChunkCount))

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID(run.ID)),
			run.State,
			chunks,
			convergence,
			dateStyle.Render(formatStarted(run.StartedAt, now)))
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(shortID(runs[0].ID))+
		idStyle.Render(") with `completion-estimator history show <id>`"))
}

func displayReport(out io.Writer, report *internal.Report) {
	_, _ = fmt.Fprintln(out, headerStyle.Render("Run "+report.RunID))

	meta := []string{
		fmt.Sprintf("State: %s", report.State),
		fmt.Sprintf("Chunks: %d of %d (%d words each)", report.Cursor, report.ChunkCount, report.ChunkSize),
	}
	if !report.StartedAt.IsZero() {
		meta = append(meta, "Started: "+report.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}
	if !report.FinishedAt.IsZero() {
		meta = append(meta, "Finished: "+report.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintln(out, runMetaStyle.Render(strings.Join(meta, "  •  ")))
	_, _ = fmt.Fprintln(out)

	points := report.Points()
	if len(points) == 0 {
		_, _ = fmt.Fprintln(out, "No chunks analyzed.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
		_, _ = fmt.Fprintln(w, "Chunk\tEstimated value\tCumulative keywords\tKDR\tEntity-relations\t")
		for _, p := range points {
			marker := ""
			if c := report.Series.ConvergenceChunk; c != nil && *c == p.Chunk {
				marker = " ✓"
			}
			_, _ = fmt.Fprintf(w, "%d%s\t%s\t%s\t%s\t%s\t\n",
				p.Chunk, marker,
				formatMetric(p.RandomValue),
				formatMetric(p.CumulativeKeywords),
				formatMetric(p.KDR),
				formatMetric(p.EntityRelationCount))
		}
		_ = w.Flush()
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, internal.ConvergenceLine(report.Series))
}

func formatStarted(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	t = t.Local()
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
}
