package chart

import "math"

// curveSegments is the number of straight pieces each cubic segment is
// flattened into
const curveSegments = 16

// MonotoneX returns a polyline through points following a cubic
// interpolation that preserves monotonicity in y, assuming points are
// sorted by x. The curve passes through every input point and never
// overshoots between two of them.
func MonotoneX(points []Point) []Point {
	n := len(points)
	if n < 3 {
		return append([]Point{}, points...)
	}

	tangents := make([]float64, n)
	for i := 1; i < n-1; i++ {
		tangents[i] = interiorTangent(points[i-1], points[i], points[i+1])
	}
	tangents[0] = endTangent(points[0], points[1], tangents[1])
	tangents[n-1] = endTangent(points[n-2], points[n-1], tangents[n-2])

	out := make([]Point, 0, (n-1)*curveSegments+1)
	out = append(out, points[0])
	for i := 0; i < n-1; i++ {
		p0, p3 := points[i], points[i+1]
		dx := (p3.X - p0.X) / 3
		c1 := Point{X: p0.X + dx, Y: p0.Y + dx*tangents[i]}
		c2 := Point{X: p3.X - dx, Y: p3.Y - dx*tangents[i+1]}
		for s := 1; s <= curveSegments; s++ {
			out = append(out, bezier(p0, c1, c2, p3, float64(s)/curveSegments))
		}
	}
	return out
}

func slope(a, b Point) float64 {
	h := b.X - a.X
	if h == 0 {
		return 0
	}
	return (b.Y - a.Y) / h
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// interiorTangent is the Steffen tangent at p1: zero at local extrema,
// otherwise bounded by both neighbouring secant slopes.
func interiorTangent(p0, p1, p2 Point) float64 {
	h0 := p1.X - p0.X
	h1 := p2.X - p1.X
	s0 := slope(p0, p1)
	s1 := slope(p1, p2)
	if h0+h1 == 0 {
		return 0
	}
	p := (s0*h1 + s1*h0) / (h0 + h1)
	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) {
		return 0
	}
	return t
}

// endTangent derives an end point's tangent from the neighbouring one
func endTangent(p0, p1 Point, t float64) float64 {
	if p1.X == p0.X {
		return t
	}
	return (3*slope(p0, p1) - t) / 2
}

func bezier(p0, c1, c2, p3 Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*c1.X + c*c2.X + d*p3.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p3.Y,
	}
}
