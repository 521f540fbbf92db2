// Package signal holds the per-round signal cubes handed to the calibration core
// and extracts per-channel profiles from them with fill values masked.
package signal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/lidarcal/internal/profile"
)

// DefaultFillValue is the netCDF default fill value for 64-bit floats, used by
// the pre-processor for bins without data.
const DefaultFillValue = 9.969209968386869e36

var (
	// ErrNoChannel is returned when a cube holds no data for a channel.
	ErrNoChannel = errors.New("channel not present in cube")
	// ErrCubeShape is returned when a channel's matrix does not match the cube's bins.
	ErrCubeShape = errors.New("channel data does not match cube shape")
)

// Cube is one measurement round: for each channel a time × bin matrix of
// range-corrected signal.
type Cube struct {
	Bins      int
	FillValue float64
	data      map[string]*mat.Dense
	order     []string
}

// NewCube creates an empty cube with the given number of range bins.
func NewCube(bins int) *Cube {
	return &Cube{
		Bins:      bins,
		FillValue: DefaultFillValue,
		data:      make(map[string]*mat.Dense),
	}
}

// Set stores the time × bin rows for a channel. The rows are copied.
func (c *Cube) Set(channel string, rows [][]float64) error {
	if c.Bins <= 0 {
		return fmt.Errorf("%w: cube has %d bins", ErrCubeShape, c.Bins)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s has no time steps", ErrCubeShape, channel)
	}
	m := mat.NewDense(len(rows), c.Bins, nil)
	for i, row := range rows {
		if len(row) != c.Bins {
			return fmt.Errorf("%w: %s row %d has %d bins, want %d", ErrCubeShape, channel, i, len(row), c.Bins)
		}
		m.SetRow(i, row)
	}
	if _, ok := c.data[channel]; !ok {
		c.order = append(c.order, channel)
	}
	c.data[channel] = m
	return nil
}

// Channels returns the channel ids in insertion order.
func (c *Cube) Channels() []string {
	return append([]string(nil), c.order...)
}

// Steps returns the number of time steps stored for a channel.
func (c *Cube) Steps(channel string) int {
	m, ok := c.data[channel]
	if !ok {
		return 0
	}
	r, _ := m.Dims()
	return r
}

// Extract returns a copy of the channel's time × bin matrix with fill values
// replaced by NaN. The cube itself is never modified.
func (c *Cube) Extract(channel string) (*mat.Dense, error) {
	src, ok := c.data[channel]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoChannel, channel)
	}
	out := mat.DenseCopyOf(src)
	out.Apply(func(_, _ int, v float64) float64 {
		if c.isFill(v) {
			return math.NaN()
		}
		return v
	}, out)
	return out, nil
}

// Rows is Extract returning plain slices, one per time step.
func (c *Cube) Rows(channel string) ([][]float64, error) {
	m, err := c.Extract(channel)
	if err != nil {
		return nil, err
	}
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out, nil
}

// Profile returns the channel's signal averaged over time, ignoring missing
// samples. Bins missing at every time step stay NaN.
func (c *Cube) Profile(channel string) ([]float64, error) {
	m, err := c.Extract(channel)
	if err != nil {
		return nil, err
	}
	return ColumnMean(m), nil
}

func (c *Cube) isFill(v float64) bool {
	return v == c.FillValue || math.IsNaN(v)
}

// ColumnMean is the NaN-aware mean of each column of m.
func ColumnMean(m mat.Matrix) []float64 {
	_, cols := m.Dims()
	out := make([]float64, cols)
	for j := range out {
		out[j] = profile.NanMean(mat.Col(nil, j, m))
	}
	return out
}
