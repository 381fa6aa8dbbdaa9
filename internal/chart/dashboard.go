package chart

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iksnae/completion-estimator/internal"
	"golang.org/x/sync/errgroup"
)

// KDRThreshold is the reference rate drawn on the discovery-rate chart
const KDRThreshold = 0.02

// Chart names, also used as file names and in the HTTP host's routes
const (
	ChartKeywords = "keywords"
	ChartKDR      = "kdr"
	ChartEntities = "entities"
)

// Output formats
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ChartNames lists the dashboard charts in display order
var ChartNames = []string{ChartKeywords, ChartKDR, ChartEntities}

// NewSurface creates an encodable surface for format ("svg" or "png")
func NewSurface(format string, width, height int) (Encoder, error) {
	switch format {
	case FormatSVG:
		s, err := NewSVGSurface(width, height)
		if err != nil {
			return nil, err
		}
		return s, nil
	case FormatPNG:
		s, err := NewPNGSurface(width, height)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported chart format: %s (supported: svg, png)", format)
	}
}

// PlotFor builds the named chart from a series. All three share the chunk
// numbers as x.
func PlotFor(name string, series internal.Series, threshold float64) (Plot, error) {
	x := series.XValues()
	switch name {
	case ChartKeywords:
		return Plot{
			Title:  "Cumulative Unique Keywords",
			XLabel: "Chunk",
			YLabel: "Cumulative Unique Keywords",
			X:      x,
			Y:      append([]float64{}, series.CumulativeKeywords...),
		}, nil
	case ChartKDR:
		t := threshold
		plot := Plot{
			Title:     "Keyword Discovery Rate (KDR)",
			XLabel:    "Chunk",
			YLabel:    "KDR",
			X:         x,
			Y:         append([]float64{}, series.KDR...),
			Threshold: &t,
		}
		if series.ConvergenceChunk != nil {
			c := *series.ConvergenceChunk
			plot.Convergence = &c
		}
		return plot, nil
	case ChartEntities:
		return Plot{
			Title:  "Entity-Relation Discovery",
			XLabel: "Chunk",
			YLabel: "Entity-Relation Count",
			X:      x,
			Y:      append([]float64{}, series.EntityDiscovery...),
		}, nil
	default:
		return Plot{}, fmt.Errorf("unknown chart %q", name)
	}
}

// Dashboard renders the three charts of a run into a directory
type Dashboard struct {
	Dir       string
	Format    string
	Width     int
	Height    int
	Threshold float64
}

// NewDashboard creates a dashboard with the default geometry
func NewDashboard(dir, format string) *Dashboard {
	return &Dashboard{
		Dir:       dir,
		Format:    format,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Threshold: KDRThreshold,
	}
}

// Render draws every chart and writes one file per chart, returning the
// paths in ChartNames order. Nothing is written while the series is empty.
func (d *Dashboard) Render(ctx context.Context, series internal.Series) ([]string, error) {
	if series.Len() == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	paths := make([]string, len(ChartNames))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range ChartNames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			ext, err := d.RenderChart(&buf, name, series)
			if err != nil {
				return err
			}
			path := filepath.Join(d.Dir, name+"."+ext)
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("failed to write chart %s: %w", name, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	internal.LogDebug("Rendered %d chart(s) into %s", len(paths), d.Dir)
	return paths, nil
}

// RenderChart draws one named chart and encodes it to w, returning the file
// extension of the encoding
func (d *Dashboard) RenderChart(w io.Writer, name string, series internal.Series) (string, error) {
	plot, err := PlotFor(name, series, d.Threshold)
	if err != nil {
		return "", err
	}
	surface, err := NewSurface(d.Format, d.Width, d.Height)
	if err != nil {
		return "", err
	}
	Render(surface, plot)
	if err := surface.Encode(w); err != nil {
		return "", fmt.Errorf("failed to encode chart %s: %w", name, err)
	}
	return surface.Extension(), nil
}

// ObserveRun returns an observer that re-renders the dashboard after every
// integrated chunk
func (d *Dashboard) ObserveRun(ctx context.Context) internal.Observer {
	return internal.ObserverFunc(func(e internal.Event) {
		if e.Kind != internal.EventIntegrate {
			return
		}
		if _, err := d.Render(ctx, e.Snapshot.Series); err != nil {
			internal.LogWarn("Failed to render charts: %v", err)
		}
	})
}
