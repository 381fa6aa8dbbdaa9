package chart

import (
	"math"
	"strconv"
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// TickStep returns a 1, 2 or 5 times power-of-ten step that splits [lo, hi]
// into roughly count intervals
func TickStep(lo, hi float64, count int) float64 {
	if count <= 0 || hi <= lo {
		return 0
	}
	raw := (hi - lo) / float64(count)
	power := math.Floor(math.Log10(raw))
	base := math.Pow(10, power)

	factor := 1.0
	switch e := raw / base; {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	return factor * base
}

// Ticks returns evenly spaced values on multiples of TickStep inside [lo, hi]
func Ticks(lo, hi float64, count int) []float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return []float64{lo}
	}
	return ticksWithStep(lo, hi, TickStep(lo, hi, count))
}

// IntegerTicks is Ticks with the step rounded up to a whole number, for
// axes whose labels are integers
func IntegerTicks(lo, hi float64, count int) []float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return []float64{math.Round(lo)}
	}
	step := math.Max(1, math.Ceil(TickStep(lo, hi, count)))
	return ticksWithStep(lo, hi, step)
}

func ticksWithStep(lo, hi, step float64) []float64 {
	if step <= 0 || math.IsInf(step, 0) || math.IsNaN(step) {
		return []float64{lo, hi}
	}

	// Multiply for steps >= 1, divide by the inverse below that, so values
	// like 0.3 come out exact.
	inv := 0.0
	if step < 1 {
		inv = math.Round(1 / step)
	}

	start := math.Ceil(lo / step)
	stop := math.Floor(hi / step)
	if inv > 0 {
		start = math.Ceil(lo * inv)
		stop = math.Floor(hi * inv)
	}

	ticks := make([]float64, 0, int(stop-start)+1)
	for i := start; i <= stop; i++ {
		if inv > 0 {
			ticks = append(ticks, i/inv)
		} else {
			ticks = append(ticks, i*step)
		}
	}
	return ticks
}

// FormatInteger formats a tick as a rounded integer
func FormatInteger(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}

// FormatTick formats v with just enough decimals to tell ticks of the given
// step apart
func FormatTick(v, step float64) string {
	decimals := 0
	if step > 0 && step < 1 {
		decimals = int(math.Ceil(-math.Log10(step) - 1e-9))
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
