package chart

import (
	"image/color"
)

// OpKind identifies a recorded drawing call
type OpKind string

const (
	OpClear    OpKind = "clear"
	OpLine     OpKind = "line"
	OpPolyline OpKind = "polyline"
	OpCircle   OpKind = "circle"
	OpText     OpKind = "text"
)

// Op is one drawing call captured by a Recorder
type Op struct {
	Kind   OpKind
	Points []Point
	Radius float64
	Fill   color.Color
	Stroke Stroke
	Text   string
	Style  TextStyle
}

// Recorder is a Surface that keeps the calls made since the last Clear
type Recorder struct {
	Width, Height int
	Ops           []Op
}

// NewRecorder creates a recorder of the given size
func NewRecorder(width, height int) *Recorder {
	return &Recorder{Width: width, Height: height}
}

func (r *Recorder) Size() (int, int) { return r.Width, r.Height }

func (r *Recorder) Clear() {
	r.Ops = []Op{{Kind: OpClear}}
}

func (r *Recorder) Line(from, to Point, stroke Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpLine, Points: []Point{from, to}, Stroke: copyStroke(stroke)})
}

func (r *Recorder) Polyline(points []Point, stroke Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpPolyline, Points: append([]Point{}, points...), Stroke: copyStroke(stroke)})
}

func (r *Recorder) Circle(center Point, radius float64, fill color.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpCircle, Points: []Point{center}, Radius: radius, Fill: fill})
}

func (r *Recorder) Text(body string, at Point, style TextStyle) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Points: []Point{at}, Text: body, Style: style})
}

// Count returns how many calls of kind were recorded
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Texts returns the bodies of all recorded text calls in order
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

func copyStroke(s Stroke) Stroke {
	if s.Dash != nil {
		s.Dash = append([]float64{}, s.Dash...)
	}
	return s
}
