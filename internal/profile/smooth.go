package profile

import (
	"fmt"
	"math"
)

// Schedule controls the sliding-window smoother. Inside [Lower, Upper] the half
// window grows from HalfWindow[0] at Lower to HalfWindow[1] at Upper, linearly
// or, with Exponential set, geometrically. Outside the interval no smoothing is
// applied. Half windows are in coordinate units.
type Schedule struct {
	Lower       float64
	Upper       float64
	HalfWindow  [2]float64
	Exponential bool
}

// Constant returns a schedule with the same half window over [lower, upper].
func Constant(lower, upper, halfWindow float64) Schedule {
	return Schedule{Lower: lower, Upper: upper, HalfWindow: [2]float64{halfWindow, halfWindow}}
}

// HalfWidth returns the half window applied at coordinate x.
func (s Schedule) HalfWidth(x float64) float64 {
	if math.IsNaN(x) || x < s.Lower || x > s.Upper {
		return 0
	}
	h0, h1 := s.HalfWindow[0], s.HalfWindow[1]
	if s.Upper == s.Lower || h0 == h1 {
		return h0
	}
	f := (x - s.Lower) / (s.Upper - s.Lower)
	if s.Exponential && h0 > 0 && h1 > 0 {
		return h0 * math.Pow(h1/h0, f)
	}
	return h0 + (h1-h0)*f
}

// Smooth replaces each sample by the NaN-aware mean of the samples whose
// coordinate lies within the schedule's half window around it, and returns the
// standard error of that mean alongside. A zero half window leaves the sample
// unchanged. A window with only missing samples yields NaN.
func Smooth(values, coords []float64, s Schedule) (smoothed, sem []float64, err error) {
	if len(values) != len(coords) {
		return nil, nil, fmt.Errorf("%w: %d values, %d coordinates", ErrShapeMismatch, len(values), len(coords))
	}
	if err := checkAscending(coords); err != nil {
		return nil, nil, err
	}

	smoothed = make([]float64, len(values))
	sem = make([]float64, len(values))
	for i, x := range coords {
		hw := s.HalfWidth(x)
		if hw <= 0 {
			smoothed[i] = values[i]
			sem[i] = math.NaN()
			continue
		}

		lo, hi := i, i
		for lo > 0 && x-coords[lo-1] <= hw {
			lo--
		}
		for hi < len(coords)-1 && coords[hi+1]-x <= hw {
			hi++
		}

		mean, std, n := NanMeanStd(values[lo : hi+1])
		smoothed[i] = mean
		if n > 1 {
			sem[i] = std / math.Sqrt(float64(n))
		} else {
			sem[i] = math.NaN()
		}
	}
	return smoothed, sem, nil
}

// SmoothRows applies Smooth to every row of a cycles × bins series.
func SmoothRows(rows [][]float64, coords []float64, s Schedule) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		sm, _, err := Smooth(row, coords, s)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = sm
	}
	return out, nil
}
