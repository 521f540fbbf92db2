package polarization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/lidarcal/internal/channel"
	"github.com/banshee-data/lidarcal/internal/profile"
	"github.com/banshee-data/lidarcal/internal/signal"
)

// PairSignals are the time-averaged profiles of one channel pair. The ±45°
// profiles follow CalibrationAxis, the Rayleigh profiles and MLDR follow
// RayleighAxis.
type PairSignals struct {
	CalibrationAxis []float64
	RayleighAxis    []float64

	ReceiverM45    []float64
	TransmitterM45 []float64
	ReceiverP45    []float64
	TransmitterP45 []float64
	ReceiverRay    []float64
	TransmitterRay []float64

	// MLDR is the molecular linear depolarization ratio of the reference
	// atmosphere. It may be empty, in which case DeltaM is NaN.
	MLDR []float64
}

func (s PairSignals) check() error {
	cal := map[string][]float64{
		"receiver -45": s.ReceiverM45, "transmitter -45": s.TransmitterM45,
		"receiver +45": s.ReceiverP45, "transmitter +45": s.TransmitterP45,
	}
	for _, name := range []string{"receiver -45", "transmitter -45", "receiver +45", "transmitter +45"} {
		if len(cal[name]) != len(s.CalibrationAxis) {
			return fmt.Errorf("%w: %s signal has %d bins, calibration axis %d", profile.ErrShapeMismatch, name, len(cal[name]), len(s.CalibrationAxis))
		}
	}
	if len(s.ReceiverRay) != len(s.RayleighAxis) || len(s.TransmitterRay) != len(s.RayleighAxis) {
		return fmt.Errorf("%w: Rayleigh signals have %d and %d bins, Rayleigh axis %d", profile.ErrShapeMismatch, len(s.ReceiverRay), len(s.TransmitterRay), len(s.RayleighAxis))
	}
	if len(s.MLDR) != 0 && len(s.MLDR) != len(s.RayleighAxis) {
		return fmt.Errorf("%w: MLDR has %d bins, Rayleigh axis %d", profile.ErrShapeMismatch, len(s.MLDR), len(s.RayleighAxis))
	}
	return nil
}

// Options are the processing options shared by all pairs of a run.
type Options struct {
	CalibrationWindow profile.Window
	RayleighWindow    profile.Window
	Smoothing         profile.Schedule

	// Retardation defaults to FixedKappa{Kappa: 1} when nil.
	Retardation RetardationStrategy
}

// Profiles are the height-resolved results. Eta* follow the calibration axis,
// Delta* the Rayleigh axis.
type Profiles struct {
	EtaM45 []float64
	EtaP45 []float64
	EtaFS  []float64
	Eta    []float64
	DeltaS []float64
	DeltaC []float64
	Delta  []float64
	DeltaM []float64
}

// Result is the calibration of one channel pair.
//
// DeltaC is corrected with the channel-type default parameters, Delta with
// the supplied ones; both coincide when no override is given.
type Result struct {
	Pair     channel.Pair
	Params   Params
	Defaults Params

	Profiles Profiles

	EtaFSM45 float64
	EtaFSP45 float64
	EtaFS    float64
	EtaS     float64
	Eta      float64
	DeltaS   float64
	DeltaC   float64
	Delta    float64
	DeltaM   float64
	Psi      float64

	Retardation Retardation

	CalibrationAxis signal.Axis
	RayleighAxis    signal.Axis

	// Err is set by Run when the pair could not be processed.
	Err error
}

// Calibrate computes the calibration of one pair from its profiles. Every
// profile is smoothed with opts.Smoothing for the height-resolved results and
// averaged over the calibration or Rayleigh window for the scalar results.
func Calibrate(sig PairSignals, params, defaults Params, opts Options) (*Result, error) {
	if err := sig.check(); err != nil {
		return nil, err
	}
	strategy := opts.Retardation
	if strategy == nil {
		strategy = FixedKappa{Kappa: 1}
	}

	a := &accumulator{opts: opts}
	calX, rayX := sig.CalibrationAxis, sig.RayleighAxis

	rM45 := a.smooth(sig.ReceiverM45, calX)
	tM45 := a.smooth(sig.TransmitterM45, calX)
	rP45 := a.smooth(sig.ReceiverP45, calX)
	tP45 := a.smooth(sig.TransmitterP45, calX)
	rRay := a.smooth(sig.ReceiverRay, rayX)
	tRay := a.smooth(sig.TransmitterRay, rayX)

	cal := a.means(calX, opts.CalibrationWindow,
		sig.ReceiverM45, sig.TransmitterM45, sig.ReceiverP45, sig.TransmitterP45)
	avgRM45, avgTM45, avgRP45, avgTP45 := cal[0], cal[1], cal[2], cal[3]

	am := mapFloats(sig.MLDR, AtmosphericParameter)
	rayRows := [][]float64{sig.ReceiverRay, sig.TransmitterRay}
	if len(am) > 0 {
		rayRows = append(rayRows, am)
	}
	ray := a.means(rayX, opts.RayleighWindow, rayRows...)
	avgRRay, avgTRay, avgAm := ray[0], ray[1], math.NaN()
	if len(am) > 0 {
		avgAm = ray[2]
	}
	if a.err != nil {
		return nil, a.err
	}

	res := &Result{Params: params, Defaults: defaults}

	res.EtaFSM45 = profile.Ratio(avgRM45, avgTM45)
	res.EtaFSP45 = profile.Ratio(avgRP45, avgTP45)
	res.EtaFS = CombinedFactor(res.EtaFSM45, res.EtaFSP45)
	res.EtaS = profile.Ratio(res.EtaFS, params.TransmissionRatio)
	res.Eta = profile.Ratio(res.EtaS, params.K)

	res.DeltaS = profile.Ratio(profile.Ratio(avgRRay, avgTRay), res.Eta)
	res.DeltaC = CorrectedDepolarization(res.DeltaS, defaults)
	res.Delta = CorrectedDepolarization(res.DeltaS, params)
	res.DeltaM = MolecularDepolarization(avgAm)

	res.Psi = Imbalance(res.EtaFSP45, res.EtaFSM45)
	res.Retardation = strategy.Estimate(res.Psi)

	p := &res.Profiles
	p.EtaM45 = divide(rM45, tM45)
	p.EtaP45 = divide(rP45, tP45)
	p.EtaFS = make([]float64, len(calX))
	p.Eta = make([]float64, len(calX))
	for i := range calX {
		p.EtaFS[i] = CombinedFactor(p.EtaM45[i], p.EtaP45[i])
		p.Eta[i] = profile.Ratio(profile.Ratio(p.EtaFS[i], params.TransmissionRatio), params.K)
	}

	rayRatio := divide(rRay, tRay)
	p.DeltaS = mapFloats(rayRatio, func(v float64) float64 { return profile.Ratio(v, res.Eta) })
	p.DeltaC = mapFloats(p.DeltaS, func(v float64) float64 { return CorrectedDepolarization(v, defaults) })
	p.Delta = mapFloats(p.DeltaS, func(v float64) float64 { return CorrectedDepolarization(v, params) })
	p.DeltaM = mapFloats(am, MolecularDepolarization)

	return res, nil
}

// accumulator runs smoothing and averaging steps, keeping the first error.
type accumulator struct {
	opts Options
	err  error
}

func (a *accumulator) smooth(values, coords []float64) []float64 {
	if a.err != nil {
		return nil
	}
	out, _, err := profile.Smooth(values, coords, a.opts.Smoothing)
	if err != nil {
		a.err = fmt.Errorf("smoothing: %w", err)
	}
	return out
}

// means averages each row over w. Rows must share the length of coords.
func (a *accumulator) means(coords []float64, w profile.Window, rows ...[]float64) []float64 {
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = math.NaN()
	}
	if a.err != nil {
		return out
	}
	if len(coords) == 0 {
		_, err := w.Mean(nil, nil)
		a.err = fmt.Errorf("averaging: %w", err)
		return out
	}

	m := mat.NewDense(len(rows), len(coords), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	avg, err := profile.Average(m, coords, w, 1, true)
	if err != nil {
		a.err = fmt.Errorf("averaging: %w", err)
		return out
	}
	return mat.Col(out, 0, avg)
}

// divide is profile.Divide for slices already known to have equal lengths.
func divide(a, b []float64) []float64 {
	out, err := profile.Divide(a, b)
	if err != nil {
		return mapFloats(a, func(float64) float64 { return math.NaN() })
	}
	return out
}
