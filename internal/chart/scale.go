package chart

import "math"

// LinearScale maps a data domain onto a pixel range
type LinearScale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// Map converts a domain value to pixels. A zero-width domain maps every
// value to the middle of the range.
func (s LinearScale) Map(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return (s.RangeMin + s.RangeMax) / 2
	}
	return s.RangeMin + (v-s.DomainMin)/span*(s.RangeMax-s.RangeMin)
}

// XDomain returns [min(xs), max(xs)], or [0, 1] for no values
func XDomain(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 1
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

// YDomain returns [0, max(ys)*1.1]. The upper bound falls back to 1 when
// ys is empty or its maximum is not a positive number.
func YDomain(ys []float64) (float64, float64) {
	if len(ys) == 0 {
		return 0, 1
	}
	hi := ys[0]
	for _, y := range ys[1:] {
		hi = max(hi, y)
	}
	upper := hi * 1.1
	if upper <= 0 || math.IsNaN(upper) {
		upper = 1
	}
	return 0, upper
}
