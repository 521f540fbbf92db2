package polarization

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/lidarcal/internal/channel"
	"github.com/banshee-data/lidarcal/internal/config"
	"github.com/banshee-data/lidarcal/internal/monitoring"
	"github.com/banshee-data/lidarcal/internal/profile"
	"github.com/banshee-data/lidarcal/internal/signal"
	"github.com/banshee-data/lidarcal/internal/version"
)

// Input is the preprocessed data of a calibration run. The cubes are indexed
// by channel id; geometry and MLDR are looked up by receiver channel id.
type Input struct {
	Minus45  *signal.Cube
	Plus45   *signal.Cube
	Rayleigh *signal.Cube

	CalibrationGeometry map[string]signal.Geometry
	RayleighGeometry    map[string]signal.Geometry
	MLDR                map[string][]float64
}

// Settings are the resolved run options.
type Settings struct {
	Receivers    []string
	Transmitters []string
	Overrides    Overrides
	Options      Options

	CalibrationLimits *[2]float64
	RayleighLimits    *[2]float64
	UseRange          bool

	Workers int
}

// SettingsFromConfig builds run settings from a validated configuration.
func SettingsFromConfig(cfg *config.PolarizationConfig) Settings {
	var strategy RetardationStrategy = FixedKappa{Kappa: cfg.GetKappa()}
	if cfg.GetRetardationMode() == config.RetardationKnownEpsilon {
		strategy = KnownEpsilon{Degrees: cfg.GetKnownEpsilonDeg()}
	}
	rng := cfg.GetSmoothingRange()
	return Settings{
		Receivers:    cfg.ChR,
		Transmitters: cfg.ChT,
		Overrides: Overrides{
			K:                 cfg.K,
			GR:                cfg.GR,
			GT:                cfg.GT,
			HR:                cfg.HR,
			HT:                cfg.HT,
			TransmissionRatio: cfg.RToTTransmissionRatio,
		},
		Options: Options{
			CalibrationWindow: profile.Window{Center: cfg.GetCalibrationHeight(), HalfWidth: cfg.GetHalfCalibrationWindow()},
			RayleighWindow:    profile.Window{Center: cfg.GetRayleighHeight(), HalfWidth: cfg.GetHalfRayleighWindow()},
			Smoothing: profile.Schedule{
				Lower:       rng[0],
				Upper:       rng[1],
				HalfWindow:  cfg.GetHalfWindow(),
				Exponential: cfg.GetSmoothExponential(),
			},
			Retardation: strategy,
		},
		CalibrationLimits: cfg.GetYLimsCalibration(),
		RayleighLimits:    cfg.GetYLimsRayleigh(),
		UseRange:          cfg.GetUseRange(),
		Workers:           cfg.GetWorkers(),
	}
}

// Report collects the results of one run in pair order.
type Report struct {
	RunID     string
	Processor string
	Results   []*Result
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []*Result {
	var out []*Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Run calibrates every channel pair of the input. Invalid channel ids and
// override lists of the wrong length abort the run; a pair whose data is
// missing or malformed is reported with Err set and the others continue.
func Run(ctx context.Context, in Input, s Settings) (*Report, error) {
	if in.Minus45 == nil || in.Plus45 == nil || in.Rayleigh == nil {
		return nil, fmt.Errorf("%w: -45, +45 and Rayleigh cubes are required", signal.ErrNoChannel)
	}
	channels, err := channel.ParseAll(in.Minus45.Channels())
	if err != nil {
		return nil, err
	}

	pairs, pairErrs, err := resolve(channels, s.Receivers, s.Transmitters)
	if err != nil {
		return nil, err
	}
	supplied, defaults, err := s.Overrides.Resolve(pairs)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Processor: version.String(),
		Results:   make([]*Result, len(pairs)),
	}
	monitoring.Logf("polarization run %s: %d channel pairs", report.RunID, len(pairs))

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var res *Result
			if pairErrs[i] != nil {
				res = &Result{Pair: pair, Params: supplied[i], Defaults: defaults[i], Err: pairErrs[i]}
			} else {
				res = calibratePair(in, pair, supplied[i], defaults[i], s)
			}
			if res.Err != nil {
				monitoring.Channelf(pair.Name(), "calibration failed: %v", res.Err)
			} else {
				monitoring.Channelf(pair.Name(), "eta=%.4f delta=%.4f epsilon=%.2f kappa=%.3f",
					res.Eta, res.Delta, res.Retardation.EpsilonDeg, res.Retardation.Kappa)
			}
			report.Results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// resolve pairs the channels. Explicit lists are resolved one pair at a time
// so an unknown id only fails its own pair.
func resolve(channels []channel.Channel, receivers, transmitters []string) ([]channel.Pair, []error, error) {
	if len(receivers) == 0 && len(transmitters) == 0 {
		pairs, err := channel.ResolvePairs(channels, nil, nil)
		if err != nil {
			return nil, nil, err
		}
		return pairs, make([]error, len(pairs)), nil
	}
	if len(receivers) != len(transmitters) {
		return nil, nil, fmt.Errorf("%w: %d receivers, %d transmitters", channel.ErrPairLength, len(receivers), len(transmitters))
	}

	pairs := make([]channel.Pair, len(receivers))
	errs := make([]error, len(receivers))
	for i := range receivers {
		p, err := channel.ResolvePairs(channels, receivers[i:i+1], transmitters[i:i+1])
		if err != nil {
			pairs[i] = channel.Pair{
				Receiver:    channel.Channel{ID: receivers[i]},
				Transmitter: channel.Channel{ID: transmitters[i]},
			}
			errs[i] = err
			continue
		}
		pairs[i] = p[0]
	}
	return pairs, errs, nil
}

func calibratePair(in Input, pair channel.Pair, params, defaults Params, s Settings) *Result {
	fail := func(err error) *Result {
		return &Result{Pair: pair, Params: params, Defaults: defaults, Err: err}
	}
	rID, tID := pair.Receiver.ID, pair.Transmitter.ID

	calGeom, ok := in.CalibrationGeometry[rID]
	if !ok {
		return fail(fmt.Errorf("%w: no calibration geometry for %s", channel.ErrUnknownChannel, rID))
	}
	rayGeom, ok := in.RayleighGeometry[rID]
	if !ok {
		return fail(fmt.Errorf("%w: no Rayleigh geometry for %s", channel.ErrUnknownChannel, rID))
	}
	calAxis, err := calGeom.Axis(s.CalibrationLimits, s.UseRange)
	if err != nil {
		return fail(fmt.Errorf("calibration axis: %w", err))
	}
	rayAxis, err := rayGeom.Axis(s.RayleighLimits, s.UseRange)
	if err != nil {
		return fail(fmt.Errorf("Rayleigh axis: %w", err))
	}

	sig := PairSignals{
		CalibrationAxis: calAxis.Values,
		RayleighAxis:    rayAxis.Values,
		MLDR:            in.MLDR[rID],
	}
	profiles := []struct {
		cube *signal.Cube
		id   string
		dst  *[]float64
	}{
		{in.Minus45, rID, &sig.ReceiverM45},
		{in.Minus45, tID, &sig.TransmitterM45},
		{in.Plus45, rID, &sig.ReceiverP45},
		{in.Plus45, tID, &sig.TransmitterP45},
		{in.Rayleigh, rID, &sig.ReceiverRay},
		{in.Rayleigh, tID, &sig.TransmitterRay},
	}
	for _, p := range profiles {
		v, err := p.cube.Profile(p.id)
		if err != nil {
			return fail(err)
		}
		*p.dst = v
	}

	res, err := Calibrate(sig, params, defaults, s.Options)
	if err != nil {
		return fail(err)
	}
	res.Pair = pair
	res.CalibrationAxis = calAxis
	res.RayleighAxis = rayAxis
	return res
}
