package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// SVGSurface draws through go-chart's vector renderer
type SVGSurface struct {
	width, height int
	font          *truetype.Font
	r             gochart.Renderer
	err           error
}

// NewSVGSurface creates an SVG surface using go-chart's bundled font
func NewSVGSurface(width, height int) (*SVGSurface, error) {
	font, err := gochart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load chart font: %w", err)
	}
	s := &SVGSurface{width: width, height: height, font: font}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SVGSurface) reset() error {
	r, err := gochart.SVG(s.width, s.height)
	if err != nil {
		return fmt.Errorf("failed to create svg renderer: %w", err)
	}
	// 72 DPI keeps font sizes in pixels
	r.SetDPI(72)
	s.r = r
	return nil
}

func (s *SVGSurface) Size() (int, int) { return s.width, s.height }

// Clear discards everything drawn so far and paints a white background
func (s *SVGSurface) Clear() {
	if err := s.reset(); err != nil {
		s.err = err
		return
	}
	s.r.ResetStyle()
	s.r.SetFillColor(drawing.ColorWhite)
	s.r.SetStrokeColor(drawing.ColorTransparent)
	s.r.MoveTo(0, 0)
	s.r.LineTo(s.width, 0)
	s.r.LineTo(s.width, s.height)
	s.r.LineTo(0, s.height)
	s.r.Close()
	s.r.Fill()
}

func (s *SVGSurface) applyStroke(stroke Stroke) {
	s.r.ResetStyle()
	s.r.SetStrokeColor(toDrawingColor(stroke.Color))
	s.r.SetStrokeWidth(stroke.Width)
	s.r.SetStrokeDashArray(stroke.Dash)
	s.r.SetFillColor(drawing.ColorTransparent)
}

func (s *SVGSurface) Line(from, to Point, stroke Stroke) {
	s.applyStroke(stroke)
	s.r.MoveTo(px(from.X), px(from.Y))
	s.r.LineTo(px(to.X), px(to.Y))
	s.r.Stroke()
}

func (s *SVGSurface) Polyline(points []Point, stroke Stroke) {
	if len(points) < 2 {
		return
	}
	s.applyStroke(stroke)
	s.r.MoveTo(px(points[0].X), px(points[0].Y))
	for _, p := range points[1:] {
		s.r.LineTo(px(p.X), px(p.Y))
	}
	s.r.Stroke()
}

func (s *SVGSurface) Circle(center Point, radius float64, fill color.Color) {
	s.r.ResetStyle()
	s.r.SetFillColor(toDrawingColor(fill))
	s.r.SetStrokeColor(drawing.ColorTransparent)
	s.r.Circle(radius, px(center.X), px(center.Y))
}

func (s *SVGSurface) Text(body string, at Point, style TextStyle) {
	s.r.ResetStyle()
	s.r.SetFont(s.font)
	s.r.SetFontColor(toDrawingColor(style.Color))
	s.r.SetFontSize(style.Size)

	offset := anchorOffset(style.Anchor, float64(s.r.MeasureText(body).Width()))
	theta := style.Rotation * math.Pi / 180
	x := at.X - offset*math.Cos(theta)
	y := at.Y - offset*math.Sin(theta)

	if style.Rotation != 0 {
		s.r.SetTextRotation(theta)
		defer s.r.ClearTextRotation()
	}
	s.r.Text(body, px(x), px(y))
}

func (s *SVGSurface) Encode(w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	return s.r.Save(w)
}

func (s *SVGSurface) Extension() string { return "svg" }

func anchorOffset(a Anchor, width float64) float64 {
	switch a {
	case AnchorMiddle:
		return width / 2
	case AnchorEnd:
		return width
	}
	return 0
}

func toDrawingColor(c color.Color) drawing.Color {
	if c == nil {
		return drawing.ColorTransparent
	}
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return drawing.Color{R: rgba.R, G: rgba.G, B: rgba.B, A: rgba.A}
}

func px(v float64) int {
	return int(math.Round(v))
}
