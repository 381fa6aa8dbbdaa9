package chart

import (
	"image/color"
)

const (
	DefaultWidth  = 600
	DefaultHeight = 300

	xTickCount = 8
	yTickCount = 6
	tickSize   = 6
	pointSize  = 4
)

// Margins is the space between the plot area and the surface edges
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins leaves room for tick labels and the axis titles
var DefaultMargins = Margins{Top: 20, Right: 40, Bottom: 40, Left: 60}

var (
	axisColor        = color.RGBA{0x00, 0x00, 0x00, 0xff}
	lineColor        = color.RGBA{0x00, 0x77, 0xcc, 0xff}
	pointColor       = color.RGBA{0x00, 0x00, 0xff, 0xff}
	thresholdColor   = color.RGBA{0xff, 0x00, 0x00, 0xff}
	convergenceColor = color.RGBA{0x00, 0x80, 0x00, 0xff}
	dash             = []float64{5, 5}
)

// Plot is everything one chart draws
type Plot struct {
	Title  string
	XLabel string
	YLabel string
	X      []float64
	Y      []float64

	// Threshold draws a dashed horizontal reference line when set
	Threshold *float64
	// Convergence draws a dashed vertical marker when set
	Convergence *int
}

// Layout is the geometry computed for one render
type Layout struct {
	Width, Height int
	Margins       Margins
	X, Y          LinearScale
	XTicks        []float64
	YTicks        []float64
	Points        []Point
}

// Render clears the surface and draws plot onto it. Identical inputs always
// produce identical drawing calls.
func Render(s Surface, plot Plot) Layout {
	width, height := s.Size()
	m := DefaultMargins

	n := min(len(plot.X), len(plot.Y))
	xs, ys := plot.X[:n], plot.Y[:n]

	xLo, xHi := XDomain(xs)
	yLo, yHi := YDomain(ys)
	layout := Layout{
		Width:   width,
		Height:  height,
		Margins: m,
		X:       LinearScale{DomainMin: xLo, DomainMax: xHi, RangeMin: m.Left, RangeMax: float64(width) - m.Right},
		Y:       LinearScale{DomainMin: yLo, DomainMax: yHi, RangeMin: float64(height) - m.Bottom, RangeMax: m.Top},
		XTicks:  IntegerTicks(xLo, xHi, xTickCount),
		YTicks:  Ticks(yLo, yHi, yTickCount),
	}

	layout.Points = make([]Point, n)
	for i := range n {
		layout.Points[i] = Point{X: layout.X.Map(xs[i]), Y: layout.Y.Map(ys[i])}
	}

	s.Clear()
	drawAxes(s, layout)

	if len(layout.Points) > 0 {
		s.Polyline(MonotoneX(layout.Points), Stroke{Color: lineColor, Width: 2})
	}
	for _, p := range layout.Points {
		s.Circle(p, pointSize, pointColor)
	}

	left, right := m.Left, float64(width)-m.Right
	top, bottom := m.Top, float64(height)-m.Bottom
	if plot.Threshold != nil {
		y := layout.Y.Map(*plot.Threshold)
		s.Line(Point{X: left, Y: y}, Point{X: right, Y: y}, Stroke{Color: thresholdColor, Width: 1, Dash: dash})
	}
	if plot.Convergence != nil {
		x := layout.X.Map(float64(*plot.Convergence))
		s.Line(Point{X: x, Y: top}, Point{X: x, Y: bottom}, Stroke{Color: convergenceColor, Width: 1, Dash: dash})
	}

	drawLabels(s, plot, width, height)
	return layout
}

func drawAxes(s Surface, l Layout) {
	axis := Stroke{Color: axisColor, Width: 1}
	tickText := TextStyle{Color: axisColor, Size: 10, Anchor: AnchorMiddle}

	baseline := l.Y.RangeMin
	s.Line(Point{X: l.X.RangeMin, Y: baseline}, Point{X: l.X.RangeMax, Y: baseline}, axis)
	for _, v := range l.XTicks {
		x := l.X.Map(v)
		s.Line(Point{X: x, Y: baseline}, Point{X: x, Y: baseline + tickSize}, axis)
		s.Text(FormatInteger(v), Point{X: x, Y: baseline + tickSize + 12}, tickText)
	}

	edge := l.X.RangeMin
	s.Line(Point{X: edge, Y: l.Y.RangeMin}, Point{X: edge, Y: l.Y.RangeMax}, axis)
	step := 0.0
	if len(l.YTicks) > 1 {
		step = l.YTicks[1] - l.YTicks[0]
	}
	tickText.Anchor = AnchorEnd
	for _, v := range l.YTicks {
		y := l.Y.Map(v)
		s.Line(Point{X: edge - tickSize, Y: y}, Point{X: edge, Y: y}, axis)
		s.Text(FormatTick(v, step), Point{X: edge - tickSize - 3, Y: y + 3}, tickText)
	}
}

func drawLabels(s Surface, plot Plot, width, height int) {
	w, h := float64(width), float64(height)
	label := TextStyle{Color: axisColor, Size: 12, Anchor: AnchorMiddle}

	if plot.XLabel != "" {
		s.Text(plot.XLabel, Point{X: w / 2, Y: h - 5}, label)
	}
	if plot.YLabel != "" {
		rotated := label
		rotated.Rotation = -90
		s.Text(plot.YLabel, Point{X: 15, Y: h / 2}, rotated)
	}
	if plot.Title != "" {
		s.Text(plot.Title, Point{X: w / 2, Y: 15}, TextStyle{Color: axisColor, Size: 14, Bold: true, Anchor: AnchorMiddle})
	}
}
