package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/completion-estimator/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		report  *internal.Report
		want    []string
		notWant []string
	}{
		{
			name:   "completed report",
			report: internal.CreateTestReport("run-1", 2),
			want: []string{
				"# Run run-1",
				"**Started:** 2024-05-01T12:00:00Z",
				"**State:** completed",
				"**Chunks:** 2 of 2 (600 words each)",
				"**KDR threshold:** 0.02",
				"Convergence occurs at chunk: Not yet",
				"## Chunks",
				"| Chunk | Estimated value |",
				"| 1 | 12 | 30 | 0.5 | 3 |",
				"| 2 | 24 | 60 | 0.25 | 6 |",
			},
		},
		{
			name:   "converged report",
			report: internal.CreateTestReportWithConvergence("run-2", 3, 2),
			want: []string{
				"Convergence occurs at chunk: 2",
				"| 2 ✓ |",
			},
		},
		{
			name:    "partial report",
			report:  internal.CreateTestPartialReport("run-3", 1, 3),
			want:    []string{"**State:** streaming", "**Chunks:** 1 of 3"},
			notWant: []string{"**Finished:**"},
		},
		{
			name:    "empty report",
			report:  internal.CreateTestReport("run-4", 0),
			want:    []string{"_No chunks analyzed._"},
			notWant: []string{"| Chunk |"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.report, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Export() output missing %q\n%s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("Export() output should not contain %q", nw)
				}
			}
		})
	}
}

func TestMarkdownExporter_Extension(t *testing.T) {
	if got := (&MarkdownExporter{}).Extension(); got != "md" {
		t.Errorf("Extension() = %v, want md", got)
	}
}
