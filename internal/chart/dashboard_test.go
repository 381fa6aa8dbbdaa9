package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/completion-estimator/internal"
)

func sampleSeries(n int, conv *int) internal.Series {
	series := internal.NewSeries()
	for i := 1; i <= n; i++ {
		series = internal.Integrate(series, internal.AnalysisResult{
			ChunkNumber:         i,
			CumulativeKeywords:  float64(40 * i),
			KDR:                 0.3 / float64(i),
			RandomValue:         float64(10 * i),
			EntityRelationCount: float64(5 * i),
			ConvergenceChunk:    conv,
		})
	}
	return series
}

func TestPlotFor(t *testing.T) {
	conv := 2
	series := sampleSeries(3, &conv)

	kdr, err := PlotFor(ChartKDR, series, KDRThreshold)
	if err != nil {
		t.Fatalf("PlotFor() error = %v", err)
	}
	if kdr.Threshold == nil || *kdr.Threshold != KDRThreshold {
		t.Errorf("KDR chart threshold = %v, want %v", kdr.Threshold, KDRThreshold)
	}
	if kdr.Convergence == nil || *kdr.Convergence != 2 {
		t.Errorf("KDR chart convergence = %v, want 2", kdr.Convergence)
	}

	for _, name := range []string{ChartKeywords, ChartEntities} {
		plot, err := PlotFor(name, series, KDRThreshold)
		if err != nil {
			t.Fatalf("PlotFor(%q) error = %v", name, err)
		}
		if plot.Threshold != nil || plot.Convergence != nil {
			t.Errorf("%s chart should have no overlays", name)
		}
		if len(plot.X) != 3 || len(plot.Y) != 3 {
			t.Errorf("%s chart has %d x and %d y values", name, len(plot.X), len(plot.Y))
		}
	}

	if _, err := PlotFor("bogus", series, KDRThreshold); err == nil {
		t.Error("PlotFor() should reject unknown chart names")
	}
}

func TestPlotFor_Labels(t *testing.T) {
	series := sampleSeries(2, nil)
	tests := []struct {
		name   string
		title  string
		xLabel string
		yLabel string
	}{
		{ChartKeywords, "Cumulative Unique Keywords", "Chunk", "Cumulative Unique Keywords"},
		{ChartKDR, "Keyword Discovery Rate (KDR)", "Chunk", "KDR"},
		{ChartEntities, "Entity-Relation Discovery", "Chunk", "Entity-Relation Count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plot, err := PlotFor(tt.name, series, KDRThreshold)
			if err != nil {
				t.Fatal(err)
			}
			if plot.Title != tt.title || plot.XLabel != tt.xLabel || plot.YLabel != tt.yLabel {
				t.Errorf("labels = %q / %q / %q, want %q / %q / %q",
					plot.Title, plot.XLabel, plot.YLabel, tt.title, tt.xLabel, tt.yLabel)
			}
		})
	}
}

func TestDashboard_EmptySeriesRendersNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	paths, err := NewDashboard(dir, "svg").Render(context.Background(), internal.NewSeries())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("Render() wrote %v for an empty series", paths)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("chart directory should not be created for an empty series")
	}
}

func TestDashboard_Render(t *testing.T) {
	for _, format := range []string{"svg", "png"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			paths, err := NewDashboard(dir, format).Render(context.Background(), sampleSeries(4, nil))
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(paths) != len(ChartNames) {
				t.Fatalf("Render() wrote %d files, want %d", len(paths), len(ChartNames))
			}
			for i, p := range paths {
				if filepath.Base(p) != ChartNames[i]+"."+format {
					t.Errorf("path %d = %s", i, p)
				}
				info, err := os.Stat(p)
				if err != nil {
					t.Fatalf("chart file missing: %v", err)
				}
				if info.Size() == 0 {
					t.Errorf("chart file %s is empty", p)
				}
			}
		})
	}
}

func TestDashboard_RenderChartSVG(t *testing.T) {
	var buf bytes.Buffer
	ext, err := NewDashboard("", "svg").RenderChart(&buf, ChartKeywords, sampleSeries(2, nil))
	if err != nil {
		t.Fatalf("RenderChart() error = %v", err)
	}
	if ext != "svg" {
		t.Errorf("extension = %q, want svg", ext)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("output is not an SVG document")
	}
}

func TestNewSurface_UnknownFormat(t *testing.T) {
	if _, err := NewSurface("gif", 10, 10); err == nil {
		t.Error("NewSurface() should reject unsupported formats")
	}
}
