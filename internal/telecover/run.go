package telecover

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

// Input is the preprocessed data of a telecover run. Each cube holds one
// acquisition cycle per time step.
type Input struct {
	Outer    *signal.Cube
	Inner    *signal.Cube
	Geometry map[string]signal.Geometry
}

// Settings are the resolved run options.
type Settings struct {
	Filter  channel.Filter
	Options Options

	// SmoothingWindow is the full width of the smoothing window; it is applied
	// over the whole axis of each channel.
	SmoothingWindow   float64
	SmoothExponential bool
	Limits            *[2]float64
	UseRange          bool
	Workers           int
}

// SettingsFromConfig builds run settings from a validated configuration.
func SettingsFromConfig(cfg *config.TelecoverConfig) Settings {
	telescope, chType, mode, subtype := cfg.GetExclusions()
	return Settings{
		Filter: channel.Filter{
			Channels:         cfg.Channels,
			ExcludeTelescope: telescope,
			ExcludeType:      chType,
			ExcludeMode:      mode,
			ExcludeSubtype:   subtype,
		},
		Options: Options{
			Region:     cfg.GetNormalizationRegion(),
			AutoFit:    cfg.GetAutoFit(),
			Step:       cfg.GetFitStep(),
			RSEMLimit:  cfg.GetRSEMLimit(),
			CrossCheck: cfg.GetCrossCheck(),
			Sector:     SectorOptions{Smooth: cfg.GetSmooth()},
		},
		SmoothingWindow:   cfg.GetSmoothingWindow(),
		SmoothExponential: cfg.GetSmoothExponential(),
		Limits:            cfg.GetXLims(),
		UseRange:          cfg.GetUseRange(),
		Workers:           cfg.GetWorkers(),
	}
}

// Report collects the results of one run in channel order.
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

// Run normalizes every selected channel of the input. A channel that is
// requested but absent, or whose data is missing or malformed, is reported with
// Err set and the others continue. Unknown requested channels follow the
// processed ones in the results.
func Run(ctx context.Context, in Input, s Settings) (*Report, error) {
	if in.Outer == nil || in.Inner == nil {
		return nil, fmt.Errorf("%w: outer and inner cubes are required", signal.ErrNoChannel)
	}
	all, err := channel.ParseAll(in.Outer.Channels())
	if err != nil {
		return nil, err
	}
	channels, unknown := s.Filter.Apply(all)

	report := &Report{
		RunID:     uuid.NewString(),
		Processor: version.String(),
		Results:   make([]*Result, len(channels), len(channels)+len(unknown)),
	}
	monitoring.Logf("telecover run %s: %d channels", report.RunID, len(channels))
	for _, id := range unknown {
		err := fmt.Errorf("%w: %q", channel.ErrUnknownChannel, id)
		monitoring.Channelf(id, "normalization failed: %v", err)
		report.Results = append(report.Results, &Result{Channel: id, Err: err})
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ch := range channels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := normalizeChannel(in, ch.ID, s)
			switch {
			case res.Err != nil:
				monitoring.Channelf(ch.ID, "normalization failed: %v", res.Err)
			case res.Region.Fit.Err() != nil:
				monitoring.Channelf(ch.ID, "%v", res.Region.Fit.Err())
			default:
				monitoring.Channelf(ch.ID, "region [%.2f, %.2f] coef_o=%.4g coef_i=%.4g",
					res.Region.Lower, res.Region.Upper, res.Outer.Coefficient, res.Inner.Coefficient)
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

func normalizeChannel(in Input, id string, s Settings) *Result {
	fail := func(err error) *Result {
		return &Result{Channel: id, Err: err}
	}

	geom, ok := in.Geometry[id]
	if !ok {
		return fail(fmt.Errorf("%w: no geometry for %s", channel.ErrUnknownChannel, id))
	}
	axis, err := geom.Axis(s.Limits, s.UseRange)
	if err != nil {
		return fail(err)
	}
	outer, err := in.Outer.Extract(id)
	if err != nil {
		return fail(err)
	}
	inner, err := in.Inner.Extract(id)
	if err != nil {
		return fail(err)
	}

	opts := s.Options
	opts.Sector.Schedule = profile.Schedule{
		Lower:       axis.Lower,
		Upper:       axis.Upper,
		HalfWindow:  [2]float64{s.SmoothingWindow / 2, s.SmoothingWindow / 2},
		Exponential: s.SmoothExponential,
	}
	res, err := Normalize(outer, inner, axis.Values, opts)
	if err != nil {
		return fail(err)
	}
	res.Channel = id
	res.Axis = axis
	return res
}
