package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestWindowBounds(t *testing.T) {
	w := Between(1, 3)
	assert.Equal(t, Window{Center: 2, HalfWidth: 1}, w)
	lo, hi := w.Bounds()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 3.0, hi)
	assert.True(t, w.Contains(1))
	assert.True(t, w.Contains(3))
	assert.False(t, w.Contains(3.0001))
}

func TestWindowMean(t *testing.T) {
	coords := []float64{0, 1, 2, 3, 4}
	values := []float64{10, 1, math.NaN(), 3, 10}

	got, err := Window{Center: 2, HalfWidth: 1}.Mean(values, coords)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = Window{Center: 2, HalfWidth: 0}.Mean(values, coords)
	require.NoError(t, err, "a window holding only missing samples is not empty")
	assert.True(t, math.IsNaN(got))

	_, err = Window{Center: 2}.Mean(values, coords[:3])
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestWindowMeanEmptyRegion(t *testing.T) {
	coords := []float64{0, 0.5, 1.0, 1.5}
	values := []float64{1, 2, 3, 4}

	// Half width smaller than the coordinate step, centred between two samples.
	_, err := Window{Center: 0.75, HalfWidth: 0.1}.Mean(values, coords)
	assert.ErrorIs(t, err, ErrEmptyRegion)

	_, err = Window{Center: 5, HalfWidth: 1}.Mean(values, coords)
	assert.ErrorIs(t, err, ErrEmptyRegion)
}

func TestAverage(t *testing.T) {
	// 2 cycles × 4 bins
	m := mat.NewDense(2, 4, []float64{
		1, 2, 3, 100,
		math.NaN(), 4, 5, 100,
	})
	coords := []float64{0, 1, 2, 3}
	w := Window{Center: 1, HalfWidth: 1}

	t.Run("axis_1_keep", func(t *testing.T) {
		got, err := Average(m, coords, w, 1, false)
		require.NoError(t, err)
		r, c := got.Dims()
		assert.Equal(t, 2, r)
		assert.Equal(t, 1, c)
		assert.Equal(t, 2.0, got.At(0, 0))
		assert.Equal(t, 4.5, got.At(1, 0))
	})

	t.Run("axis_1_squeeze", func(t *testing.T) {
		got, err := Average(m, coords, w, 1, true)
		require.NoError(t, err)
		v, ok := got.(*mat.VecDense)
		require.True(t, ok)
		assert.Equal(t, 2, v.Len())
		assert.Equal(t, 4.5, v.AtVec(1))
	})

	t.Run("axis_0_keep", func(t *testing.T) {
		got, err := Average(m, []float64{0, 1}, Window{Center: 0.5, HalfWidth: 0.5}, 0, false)
		require.NoError(t, err)
		r, c := got.Dims()
		assert.Equal(t, 1, r)
		assert.Equal(t, 4, c)
		assert.Equal(t, 1.0, got.At(0, 0))
		assert.Equal(t, 3.0, got.At(0, 1))
		assert.Equal(t, 100.0, got.At(0, 3))
	})

	t.Run("axis_0_squeeze", func(t *testing.T) {
		got, err := Average(m, []float64{0, 1}, Window{Center: 0.5, HalfWidth: 0.5}, 0, true)
		require.NoError(t, err)
		v, ok := got.(*mat.VecDense)
		require.True(t, ok)
		assert.Equal(t, 4, v.Len())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Average(m, coords, Window{Center: 10, HalfWidth: 1}, 1, true)
		assert.ErrorIs(t, err, ErrEmptyRegion)

		_, err = Average(m, coords, w, 0, true)
		assert.ErrorIs(t, err, ErrShapeMismatch)

		_, err = Average(m, coords, w, 2, true)
		assert.Error(t, err)
	})
}
