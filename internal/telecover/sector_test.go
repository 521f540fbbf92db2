package telecover

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/lidarcal/internal/profile"
	"github.com/banshee-data/lidarcal/internal/testutil"
)

func cycles(bins int, values ...float64) *mat.Dense {
	m := mat.NewDense(len(values), bins, nil)
	for i, v := range values {
		m.SetRow(i, testutil.Constant(bins, v))
	}
	return m
}

func TestProcessSector(t *testing.T) {
	x := testutil.Span(31, 0, 3)
	region := profile.Between(1.5, 2.5)

	t.Run("envelope", func(t *testing.T) {
		res, err := ProcessSector(x, cycles(len(x), 1, 2, 3), 3, region, SectorOptions{})
		require.NoError(t, err)

		sd := math.Sqrt(2.0 / 3.0)
		assert.InDelta(t, 0.5, res.Coefficient, 1e-12)
		for j := range x {
			assert.InDelta(t, 2, res.Mean[j], 1e-12)
			assert.InDelta(t, 2, res.SmoothedMean[j], 1e-12)
			assert.InDelta(t, 2-sd, res.Lower[j], 1e-12)
			assert.InDelta(t, 2+sd, res.Upper[j], 1e-12)
		}
		assert.Len(t, res.Smoothed, 3)
		assert.False(t, res.HasExtra)
		assert.Empty(t, res.Extra)
		testutil.AssertNaN(t, "ExtraCoefficient", res.ExtraCoefficient)
	})

	t.Run("extra_sector", func(t *testing.T) {
		res, err := ProcessSector(x, cycles(len(x), 1, 1, 1, 3, 5), 3, region, SectorOptions{})
		require.NoError(t, err)

		assert.InDelta(t, 1, res.Coefficient, 1e-12)
		assert.True(t, res.HasExtra)
		require.Len(t, res.Extra, len(x))
		assert.InDelta(t, 4, res.Extra[0], 1e-12)
		assert.InDelta(t, 0.25, res.ExtraCoefficient, 1e-12)
	})

	t.Run("smoothed", func(t *testing.T) {
		opts := SectorOptions{Smooth: true, Schedule: profile.Constant(0, 3, 0.25)}
		res, err := ProcessSector(x, cycles(len(x), 4, 4), 2, region, opts)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, res.Coefficient, 1e-12)
		for j := range x {
			assert.InDelta(t, 1, res.Coefficient*res.SmoothedMean[j], 1e-12)
		}
	})

	t.Run("missing_cycles", func(t *testing.T) {
		m := cycles(len(x), 2, 2)
		m.Set(1, 20, math.NaN())
		res, err := ProcessSector(x, m, 2, region, SectorOptions{})
		require.NoError(t, err)
		assert.InDelta(t, 2, res.Mean[20], 1e-12)
	})
}

func TestProcessSector_Errors(t *testing.T) {
	x := testutil.Span(31, 0, 3)

	_, err := ProcessSector(x[:10], cycles(len(x), 1), 1, profile.Between(1.5, 2.5), SectorOptions{})
	assert.ErrorIs(t, err, profile.ErrShapeMismatch)

	_, err = ProcessSector(x, cycles(len(x), 1), 1, profile.Between(10, 11), SectorOptions{})
	assert.ErrorIs(t, err, profile.ErrEmptyRegion)

	_, err = ProcessSector(x, cycles(len(x), 1, 1), 3, profile.Between(1.5, 2.5), SectorOptions{})
	assert.Error(t, err)
}
