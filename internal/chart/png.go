package chart

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	size float64
	bold bool
}

// PNGSurface rasterizes charts with gg
type PNGSurface struct {
	dc      *gg.Context
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

// NewPNGSurface creates a raster surface using the Go fonts
func NewPNGSurface(width, height int) (*PNGSurface, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}

	return &PNGSurface{
		dc:      gg.NewContext(width, height),
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

func (s *PNGSurface) face(size float64, bold bool) font.Face {
	key := faceKey{size: size, bold: bold}
	if f, ok := s.faces[key]; ok {
		return f
	}
	ttf := s.regular
	if bold {
		ttf = s.bold
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	s.faces[key] = f
	return f
}

func (s *PNGSurface) Size() (int, int) { return s.dc.Width(), s.dc.Height() }

func (s *PNGSurface) Clear() {
	s.dc.SetColor(color.White)
	s.dc.Clear()
}

func (s *PNGSurface) applyStroke(stroke Stroke) {
	s.dc.SetColor(stroke.Color)
	s.dc.SetLineWidth(stroke.Width)
	if len(stroke.Dash) > 0 {
		s.dc.SetDash(stroke.Dash...)
	} else {
		s.dc.SetDash()
	}
}

func (s *PNGSurface) Line(from, to Point, stroke Stroke) {
	s.applyStroke(stroke)
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	s.dc.Stroke()
}

func (s *PNGSurface) Polyline(points []Point, stroke Stroke) {
	if len(points) < 2 {
		return
	}
	s.applyStroke(stroke)
	s.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	s.dc.Stroke()
}

func (s *PNGSurface) Circle(center Point, radius float64, fill color.Color) {
	s.dc.SetColor(fill)
	s.dc.DrawCircle(center.X, center.Y, radius)
	s.dc.Fill()
}

func (s *PNGSurface) Text(body string, at Point, style TextStyle) {
	s.dc.Push()
	defer s.dc.Pop()

	s.dc.SetFontFace(s.face(style.Size, style.Bold))
	s.dc.SetColor(style.Color)
	if style.Rotation != 0 {
		s.dc.RotateAbout(gg.Radians(style.Rotation), at.X, at.Y)
	}

	ax := 0.0
	switch style.Anchor {
	case AnchorMiddle:
		ax = 0.5
	case AnchorEnd:
		ax = 1
	}
	s.dc.DrawStringAnchored(body, at.X, at.Y, ax, 0)
}

func (s *PNGSurface) Encode(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

func (s *PNGSurface) Extension() string { return "png" }
