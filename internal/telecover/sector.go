package telecover

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/lidarcal/internal/profile"
	"github.com/banshee-data/lidarcal/internal/signal"
)

// SectorOptions control the smoothing of sector curves. With Smooth unset the
// curves are used as measured.
type SectorOptions struct {
	Smooth   bool
	Schedule profile.Schedule
}

// SectorResult is one normalized telecover sector.
type SectorResult struct {
	// Coefficient scales SmoothedMean to 1 inside the normalization region.
	Coefficient float64

	Mean         []float64
	Smoothed     [][]float64
	SmoothedMean []float64
	Lower        []float64
	Upper        []float64

	// HasExtra is set when the sector holds more cycles than the common cycle
	// count; the surplus cycles are averaged into Extra.
	HasExtra         bool
	ExtraCoefficient float64
	Extra            []float64
	ExtraSmoothed    []float64
}

// ProcessSector normalizes one sector. cycles holds one acquisition cycle per
// row; the first iters rows form the sector curve and any further rows form
// the extra sector.
func ProcessSector(coords []float64, cycles mat.Matrix, iters int, region profile.Window, opts SectorOptions) (*SectorResult, error) {
	rows, bins := cycles.Dims()
	if bins != len(coords) {
		return nil, fmt.Errorf("%w: sector has %d bins, %d coordinates", profile.ErrShapeMismatch, bins, len(coords))
	}
	if iters < 1 || iters > rows {
		return nil, fmt.Errorf("cycle count %d outside [1, %d]", iters, rows)
	}

	first := make([][]float64, iters)
	for i := range first {
		first[i] = mat.Row(nil, i, cycles)
	}

	res := &SectorResult{ExtraCoefficient: math.NaN()}
	res.Mean = signal.ColumnMean(sliceRows(cycles, 0, iters))

	var err error
	if res.Smoothed, err = smoothRows(first, coords, opts); err != nil {
		return nil, err
	}
	if res.SmoothedMean, err = smoothOne(res.Mean, coords, opts); err != nil {
		return nil, err
	}
	mean, err := region.Mean(res.SmoothedMean, coords)
	if err != nil {
		return nil, err
	}
	res.Coefficient = profile.Ratio(1, mean)

	res.Lower = make([]float64, bins)
	res.Upper = make([]float64, bins)
	col := make([]float64, iters)
	for j := 0; j < bins; j++ {
		for i := range res.Smoothed {
			col[i] = res.Smoothed[i][j]
		}
		sd := profile.NanStd(col)
		res.Lower[j] = res.SmoothedMean[j] - sd
		res.Upper[j] = res.SmoothedMean[j] + sd
	}

	if rows > iters {
		res.HasExtra = true
		res.Extra = signal.ColumnMean(sliceRows(cycles, iters, rows))
		if res.ExtraSmoothed, err = smoothOne(res.Extra, coords, opts); err != nil {
			return nil, err
		}
		extraMean, err := region.Mean(res.ExtraSmoothed, coords)
		if err != nil {
			return nil, fmt.Errorf("extra sector: %w", err)
		}
		res.ExtraCoefficient = profile.Ratio(1, extraMean)
	}
	return res, nil
}

func sliceRows(m mat.Matrix, from, to int) mat.Matrix {
	_, bins := m.Dims()
	out := mat.NewDense(to-from, bins, nil)
	for i := from; i < to; i++ {
		for j := 0; j < bins; j++ {
			out.Set(i-from, j, m.At(i, j))
		}
	}
	return out
}

func smoothOne(values, coords []float64, opts SectorOptions) ([]float64, error) {
	if !opts.Smooth {
		return append([]float64(nil), values...), nil
	}
	out, _, err := profile.Smooth(values, coords, opts.Schedule)
	return out, err
}

func smoothRows(rows [][]float64, coords []float64, opts SectorOptions) ([][]float64, error) {
	if !opts.Smooth {
		out := make([][]float64, len(rows))
		for i, r := range rows {
			out[i] = append([]float64(nil), r...)
		}
		return out, nil
	}
	return profile.SmoothRows(rows, coords, opts.Schedule)
}
