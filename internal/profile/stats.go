package profile

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrShapeMismatch is returned when paired arrays differ in length.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrEmptyRegion is returned when no sample falls inside an averaging window.
	ErrEmptyRegion = errors.New("empty region")
	// ErrUnsortedAxis is returned when coordinates are not ascending.
	ErrUnsortedAxis = errors.New("coordinates must be ascending")
)

// Finite returns the non-NaN samples of xs in order.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// NanMean is the mean of the non-NaN samples, NaN if there are none.
func NanMean(xs []float64) float64 {
	f := Finite(xs)
	if len(f) == 0 {
		return math.NaN()
	}
	return stat.Mean(f, nil)
}

// NanMeanStd returns the mean, population standard deviation and count of the
// non-NaN samples. Mean and deviation are NaN when there are no samples.
func NanMeanStd(xs []float64) (mean, std float64, n int) {
	f := Finite(xs)
	if len(f) == 0 {
		return math.NaN(), math.NaN(), 0
	}
	mean, std = stat.PopMeanStdDev(f, nil)
	return mean, std, len(f)
}

// NanStd is the population standard deviation of the non-NaN samples.
func NanStd(xs []float64) float64 {
	_, std, _ := NanMeanStd(xs)
	return std
}

// Divide returns a/b elementwise. Zero or missing denominators give NaN.
func Divide(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, ErrShapeMismatch
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = Ratio(a[i], b[i])
	}
	return out, nil
}

// Ratio is a/b with NaN for a zero or missing denominator.
func Ratio(a, b float64) float64 {
	if b == 0 || math.IsNaN(b) {
		return math.NaN()
	}
	return a / b
}

func checkAscending(coords []float64) error {
	for i := 1; i < len(coords); i++ {
		if coords[i] < coords[i-1] {
			return ErrUnsortedAxis
		}
	}
	return nil
}
