package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iksnae/completion-estimator/internal"
)

// MarkdownExporter exports reports in Markdown format
type MarkdownExporter struct{}

// Export writes a summary header followed by a per-chunk table
func (e *MarkdownExporter) Export(report *internal.Report, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Run %s\n\n", report.RunID)

	if !report.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", report.StartedAt.UTC().Format(time.RFC3339))
	}
	if !report.FinishedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Finished:** %s  \n", report.FinishedAt.UTC().Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**State:** %s  \n", report.State)
	_, _ = fmt.Fprintf(w, "**Chunks:** %d of %d (%d words each)  \n", report.Cursor, report.ChunkCount, report.ChunkSize)
	_, _ = fmt.Fprintf(w, "**KDR threshold:** %s\n\n", formatFloat(report.KDRThreshold))
	_, _ = fmt.Fprintf(w, "%s\n\n", internal.ConvergenceLine(report.Series))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Chunks\n\n")

	points := report.Points()
	if len(points) == 0 {
		_, _ = fmt.Fprintf(w, "_No chunks analyzed._\n")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| Chunk | Estimated value | Cumulative keywords | KDR | Entity-relations |\n")
	_, _ = fmt.Fprintf(w, "|---:|---:|---:|---:|---:|\n")
	for _, p := range points {
		marker := ""
		if c := report.Series.ConvergenceChunk; c != nil && *c == p.Chunk {
			marker = " ✓"
		}
		_, _ = fmt.Fprintf(w, "| %d%s | %s | %s | %s | %s |\n",
			p.Chunk, marker,
			formatFloat(p.RandomValue),
			formatFloat(p.CumulativeKeywords),
			formatFloat(p.KDR),
			formatFloat(p.EntityRelationCount))
	}

	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
