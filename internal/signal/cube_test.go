package signal

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var nanEqual = cmpopts.EquateNaNs()

func newTestCube(t *testing.T) *Cube {
	t.Helper()
	c := NewCube(3)
	require.NoError(t, c.Set("0532xcar", [][]float64{
		{1, DefaultFillValue, 3},
		{3, DefaultFillValue, 5},
	}))
	require.NoError(t, c.Set("0532xcat", [][]float64{{2, 2, 2}}))
	return c
}

func TestCubeSet(t *testing.T) {
	c := NewCube(2)

	assert.ErrorIs(t, c.Set("a", nil), ErrCubeShape)
	assert.ErrorIs(t, c.Set("a", [][]float64{{1, 2, 3}}), ErrCubeShape)
	assert.ErrorIs(t, NewCube(0).Set("a", [][]float64{{}}), ErrCubeShape)

	require.NoError(t, c.Set("b", [][]float64{{1, 2}}))
	require.NoError(t, c.Set("a", [][]float64{{1, 2}, {3, 4}}))
	require.NoError(t, c.Set("b", [][]float64{{5, 6}}))

	assert.Equal(t, []string{"b", "a"}, c.Channels())
	assert.Equal(t, 2, c.Steps("a"))
	assert.Equal(t, 1, c.Steps("b"))
	assert.Equal(t, 0, c.Steps("missing"))
}

func TestCubeExtract(t *testing.T) {
	c := newTestCube(t)

	got, err := c.Extract("0532xcar")
	require.NoError(t, err)

	want := [][]float64{{1, math.NaN(), 3}, {3, math.NaN(), 5}}
	rows, err := c.Rows("0532xcar")
	require.NoError(t, err)
	if diff := cmp.Diff(want, rows, nanEqual); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}

	// The cube keeps its fill values.
	got.Set(0, 0, 42)
	again, err := c.Extract("0532xcar")
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.At(0, 0))
	assert.Equal(t, DefaultFillValue, c.data["0532xcar"].At(0, 1))

	_, err = c.Extract("1064xcar")
	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestCubeCustomFillValue(t *testing.T) {
	c := NewCube(2)
	c.FillValue = -999
	require.NoError(t, c.Set("x", [][]float64{{-999, 1}}))

	p, err := c.Profile("x")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p[0]))
	assert.Equal(t, 1.0, p[1])
}

func TestCubeProfile(t *testing.T) {
	c := newTestCube(t)

	got, err := c.Profile("0532xcar")
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{2, math.NaN(), 4}, got, nanEqual); diff != "" {
		t.Errorf("Profile() mismatch (-want +got):\n%s", diff)
	}

	_, err = c.Profile("missing")
	assert.ErrorIs(t, err, ErrNoChannel)
}

func TestColumnMean(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{
		1, math.NaN(),
		math.NaN(), math.NaN(),
		5, math.NaN(),
	})
	got := ColumnMean(m)
	if diff := cmp.Diff([]float64{3, math.NaN()}, got, nanEqual); diff != "" {
		t.Errorf("ColumnMean() mismatch (-want +got):\n%s", diff)
	}
}
