package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Window is a symmetric coordinate interval [Center-HalfWidth, Center+HalfWidth].
type Window struct {
	Center    float64
	HalfWidth float64
}

// Between returns the window spanning [lower, upper].
func Between(lower, upper float64) Window {
	return Window{Center: (lower + upper) / 2, HalfWidth: (upper - lower) / 2}
}

// Bounds returns the lower and upper edge of the window.
func (w Window) Bounds() (lower, upper float64) {
	return w.Center - w.HalfWidth, w.Center + w.HalfWidth
}

// Contains reports whether x lies inside the window, edges included.
func (w Window) Contains(x float64) bool {
	lower, upper := w.Bounds()
	return x >= lower && x <= upper
}

func (w Window) indices(coords []float64) []int {
	var idx []int
	for i, x := range coords {
		if w.Contains(x) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (w Window) emptyErr() error {
	lower, upper := w.Bounds()
	return fmt.Errorf("%w: no samples within [%g, %g]", ErrEmptyRegion, lower, upper)
}

// Mean is the NaN-aware mean of the samples inside the window. It is NaN when
// every sample inside is missing and ErrEmptyRegion when no coordinate is inside.
func (w Window) Mean(values, coords []float64) (float64, error) {
	if len(values) != len(coords) {
		return math.NaN(), fmt.Errorf("%w: %d values, %d coordinates", ErrShapeMismatch, len(values), len(coords))
	}
	idx := w.indices(coords)
	if len(idx) == 0 {
		return math.NaN(), w.emptyErr()
	}
	sel := make([]float64, len(idx))
	for k, i := range idx {
		sel[k] = values[i]
	}
	return NanMean(sel), nil
}

// Average reduces m along axis (0: rows follow coords, 1: columns follow
// coords) to the NaN-aware mean over the window. The reduced axis is kept with
// length one unless squeeze is set, in which case the remaining axis is
// returned as a *mat.VecDense.
func Average(m mat.Matrix, coords []float64, w Window, axis int, squeeze bool) (mat.Matrix, error) {
	rows, cols := m.Dims()
	var along, across int
	switch axis {
	case 0:
		along, across = rows, cols
	case 1:
		along, across = cols, rows
	default:
		return nil, fmt.Errorf("axis %d out of range", axis)
	}
	if along != len(coords) {
		return nil, fmt.Errorf("%w: axis %d has %d samples, %d coordinates", ErrShapeMismatch, axis, along, len(coords))
	}
	idx := w.indices(coords)
	if len(idx) == 0 {
		return nil, w.emptyErr()
	}

	out := make([]float64, across)
	sel := make([]float64, len(idx))
	for k := 0; k < across; k++ {
		for n, i := range idx {
			if axis == 0 {
				sel[n] = m.At(i, k)
			} else {
				sel[n] = m.At(k, i)
			}
		}
		out[k] = NanMean(sel)
	}

	if squeeze {
		return mat.NewVecDense(across, out), nil
	}
	if axis == 0 {
		return mat.NewDense(1, across, out), nil
	}
	return mat.NewDense(across, 1, out), nil
}
