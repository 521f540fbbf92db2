package polarization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lidarcal/internal/channel"
	"github.com/banshee-data/lidarcal/internal/profile"
	"github.com/banshee-data/lidarcal/internal/testutil"
)

const tol = 1e-9

func crossPair(t *testing.T) channel.Pair {
	t.Helper()
	pairs, err := channel.ResolvePairs(mustChannels(t, "0532xcar", "0532xcat"), nil, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	return pairs[0]
}

func mustChannels(t *testing.T, ids ...string) []channel.Channel {
	t.Helper()
	chs, err := channel.ParseAll(ids)
	require.NoError(t, err)
	return chs
}

// pairSignals builds constant profiles on a 0-8 km axis.
func pairSignals(rM45, tM45, rP45, tP45, rRay, tRay float64) PairSignals {
	x := testutil.Span(41, 0, 8)
	return PairSignals{
		CalibrationAxis: x,
		RayleighAxis:    x,
		ReceiverM45:     testutil.Constant(len(x), rM45),
		TransmitterM45:  testutil.Constant(len(x), tM45),
		ReceiverP45:     testutil.Constant(len(x), rP45),
		TransmitterP45:  testutil.Constant(len(x), tP45),
		ReceiverRay:     testutil.Constant(len(x), rRay),
		TransmitterRay:  testutil.Constant(len(x), tRay),
	}
}

func defaultOptions() Options {
	return Options{
		CalibrationWindow: profile.Window{Center: 3, HalfWidth: 0.5},
		RayleighWindow:    profile.Window{Center: 3, HalfWidth: 0.5},
		Smoothing:         profile.Schedule{Lower: 0, Upper: 20, HalfWindow: [2]float64{0.05, 0.25}},
	}
}

func TestCalibrate_CrossPairDefaults(t *testing.T) {
	pair := crossPair(t)
	def := DefaultParams(pair)
	assert.Equal(t, -1.0, def.HR)
	assert.Equal(t, -1.0, def.HT)

	res, err := Calibrate(pairSignals(2, 1, 2, 1, 1, 1), def, def, defaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 2, res.EtaFSM45, tol)
	assert.InDelta(t, 2, res.EtaFSP45, tol)
	assert.InDelta(t, 2, res.EtaFS, tol)
	assert.InDelta(t, 2, res.EtaS, tol)
	assert.InDelta(t, 2, res.Eta, tol)
	assert.InDelta(t, 0.5, res.DeltaS, tol)
	assert.InDelta(t, 0, res.DeltaC, tol)
	assert.InDelta(t, 0, res.Delta, tol)
	assert.InDelta(t, 0, res.Psi, tol)
	assert.InDelta(t, 0, res.Retardation.EpsilonDeg, tol)
	assert.Equal(t, 1.0, res.Retardation.Kappa)
	testutil.AssertNaN(t, "DeltaM", res.DeltaM)

	for i := range res.Profiles.Eta {
		assert.InDelta(t, 2, res.Profiles.EtaFS[i], tol)
		assert.InDelta(t, 2, res.Profiles.Eta[i], tol)
		assert.InDelta(t, 0.5, res.Profiles.DeltaS[i], tol)
		assert.InDelta(t, 0, res.Profiles.DeltaC[i], tol)
	}
	assert.Empty(t, res.Profiles.DeltaM)
}

func TestCalibrate_Overrides(t *testing.T) {
	pair := crossPair(t)
	def := DefaultParams(pair)

	testCases := []struct {
		name      string
		params    Params
		wantEta   float64
		wantDelta float64
	}{
		{
			name:      "receiver_gain",
			params:    Params{K: 1, GR: 2, GT: 1, HR: -1, HT: -1, TransmissionRatio: 1},
			wantEta:   2,
			wantDelta: -0.5,
		},
		{
			name:      "transmission_ratio",
			params:    Params{K: 1, GR: 1, GT: 1, HR: -1, HT: -1, TransmissionRatio: 4},
			wantEta:   0.5,
			wantDelta: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Calibrate(pairSignals(2, 1, 2, 1, 1, 1), tc.params, def, defaultOptions())
			require.NoError(t, err)
			assert.InDelta(t, tc.wantEta, res.Eta, tol)
			assert.InDelta(t, tc.wantDelta, res.Delta, tol)
			// the default-corrected ratio only follows the supplied eta
			assert.InDelta(t, CorrectedDepolarization(res.DeltaS, def), res.DeltaC, tol)
		})
	}
}

func TestCalibrate_CombinedFactorConsistency(t *testing.T) {
	pair := crossPair(t)
	def := DefaultParams(pair)

	res, err := Calibrate(pairSignals(2, 1, 3, 1, 1, 1), def, def, defaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, res.EtaFSM45*res.EtaFSP45, res.EtaFS*res.EtaFS, tol)
	assert.InDelta(t, math.Sqrt(6), res.EtaFS, tol)
	assert.InDelta(t, 0.2, res.Psi, tol)

	want := 0.5 * math.Asin(math.Tan(0.5*math.Asin(0.2))) * 180 / math.Pi
	assert.InDelta(t, want, res.Retardation.EpsilonDeg, tol)
}

func TestCalibrate_MolecularDepolarization(t *testing.T) {
	pair := crossPair(t)
	def := DefaultParams(pair)
	sig := pairSignals(2, 1, 2, 1, 1, 1)
	sig.MLDR = testutil.Constant(len(sig.RayleighAxis), 0.004)

	res, err := Calibrate(sig, def, def, defaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.004, res.DeltaM, tol)
	require.Len(t, res.Profiles.DeltaM, len(sig.RayleighAxis))
	for _, v := range res.Profiles.DeltaM {
		assert.InDelta(t, 0.004, v, tol)
	}
}

func TestCalibrate_WindowAverages(t *testing.T) {
	pair := crossPair(t)
	def := DefaultParams(pair)
	sig := pairSignals(0, 1, 2, 1, 0, 1)
	for i, x := range sig.CalibrationAxis {
		sig.ReceiverM45[i] = x
	}
	// missing bins inside the window are skipped
	sig.ReceiverP45[15] = math.NaN()

	sig.RayleighAxis = testutil.Span(21, 0, 8)
	sig.ReceiverRay = make([]float64, len(sig.RayleighAxis))
	sig.TransmitterRay = testutil.Constant(len(sig.RayleighAxis), 1)
	for i, x := range sig.RayleighAxis {
		sig.ReceiverRay[i] = x / 6
	}

	opts := defaultOptions()
	opts.RayleighWindow = profile.Window{Center: 6, HalfWidth: 1}
	res, err := Calibrate(sig, def, def, opts)
	require.NoError(t, err)

	assert.InDelta(t, 3, res.EtaFSM45, tol)
	assert.InDelta(t, 2, res.EtaFSP45, tol)
	assert.InDelta(t, profile.Ratio(1, res.Eta), res.DeltaS, tol)
	testutil.AssertNaN(t, "DeltaM", res.DeltaM)
	assert.Len(t, res.Profiles.DeltaS, len(sig.RayleighAxis))
}

func TestCalibrate_Errors(t *testing.T) {
	pair := crossPair(t)
	def := DefaultParams(pair)

	t.Run("shape_mismatch", func(t *testing.T) {
		sig := pairSignals(2, 1, 2, 1, 1, 1)
		sig.ReceiverP45 = sig.ReceiverP45[:10]
		_, err := Calibrate(sig, def, def, defaultOptions())
		assert.ErrorIs(t, err, profile.ErrShapeMismatch)
	})

	t.Run("mldr_shape", func(t *testing.T) {
		sig := pairSignals(2, 1, 2, 1, 1, 1)
		sig.MLDR = []float64{0.004}
		_, err := Calibrate(sig, def, def, defaultOptions())
		assert.ErrorIs(t, err, profile.ErrShapeMismatch)
	})

	t.Run("empty_calibration_window", func(t *testing.T) {
		opts := defaultOptions()
		opts.CalibrationWindow = profile.Window{Center: 30, HalfWidth: 0.5}
		_, err := Calibrate(pairSignals(2, 1, 2, 1, 1, 1), def, def, opts)
		assert.ErrorIs(t, err, profile.ErrEmptyRegion)
	})

	t.Run("zero_transmitter_signal", func(t *testing.T) {
		res, err := Calibrate(pairSignals(2, 0, 2, 0, 1, 1), def, def, defaultOptions())
		require.NoError(t, err)
		testutil.AssertNaN(t, "Eta", res.Eta)
		testutil.AssertNaN(t, "Delta", res.Delta)
	})
}

func TestRetardationStrategies(t *testing.T) {
	testCases := []struct {
		name string
		psi  float64
	}{
		{name: "positive", psi: 0.2},
		{name: "negative", psi: -0.1},
		{name: "small", psi: 0.01},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixed := FixedKappa{Kappa: 1}.Estimate(tc.psi)
			known := KnownEpsilon{Degrees: fixed.EpsilonDeg}.Estimate(tc.psi)
			assert.InDelta(t, 1, known.Kappa, 1e-9)
			assert.Equal(t, fixed.EpsilonDeg, known.EpsilonDeg)
		})
	}

	t.Run("zero_angle", func(t *testing.T) {
		testutil.AssertNaN(t, "kappa", KnownEpsilon{}.Estimate(0.1).Kappa)
	})
}
