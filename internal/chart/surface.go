// Package chart draws the completion-estimator line charts onto pluggable
// surfaces (SVG, PNG, or an in-memory recorder).
package chart

import (
	"image/color"
	"io"
)

// Point is a position in surface pixels, origin at the top left
type Point struct {
	X, Y float64
}

// Anchor controls horizontal text alignment around the text position
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Stroke describes how lines are drawn
type Stroke struct {
	Color color.Color
	Width float64
	Dash  []float64 // nil for a solid line
}

// TextStyle describes how labels are drawn
type TextStyle struct {
	Color    color.Color
	Size     float64
	Bold     bool
	Anchor   Anchor
	Rotation float64 // degrees, counter-clockwise is negative
}

// Surface is a drawing target. Render fully clears it before drawing, so a
// surface never carries state from a previous render.
type Surface interface {
	Size() (width, height int)
	Clear()
	Line(from, to Point, stroke Stroke)
	Polyline(points []Point, stroke Stroke)
	Circle(center Point, radius float64, fill color.Color)
	Text(body string, at Point, style TextStyle)
}

// Encoder is a surface that can be written out as an image file
type Encoder interface {
	Surface
	Encode(w io.Writer) error
	Extension() string
}
