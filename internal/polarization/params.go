package polarization

import (
	"errors"
	"fmt"

	"github.com/banshee-data/lidarcal/internal/channel"
)

// ErrOverrideLength is returned when a per-pair override list does not have
// one value per resolved channel pair.
var ErrOverrideLength = errors.New("override list length does not match channel pairs")

// Params are the calibration parameters of one channel pair.
type Params struct {
	K                 float64
	GR                float64
	GT                float64
	HR                float64
	HT                float64
	TransmissionRatio float64
}

// DefaultParams returns the channel-type defaults of a pair: unit gains,
// calibration constant and transmission ratio, and a cross-talk parameter of
// -1 for cross-polarized channels (+1 otherwise).
func DefaultParams(p channel.Pair) Params {
	return Params{
		K:                 1,
		GR:                1,
		GT:                1,
		HR:                p.Receiver.CrossTalkSign(),
		HT:                p.Transmitter.CrossTalkSign(),
		TransmissionRatio: 1,
	}
}

// Overrides holds optional per-pair parameter lists. A nil list keeps the
// defaults; a non-nil list must have one value per pair.
type Overrides struct {
	K                 []float64
	GR                []float64
	GT                []float64
	HR                []float64
	HT                []float64
	TransmissionRatio []float64
}

// Resolve returns the supplied and the default parameters of every pair.
func (o Overrides) Resolve(pairs []channel.Pair) (supplied, defaults []Params, err error) {
	lists := []struct {
		name string
		vals []float64
	}{
		{"K", o.K}, {"G_R", o.GR}, {"G_T", o.GT},
		{"H_R", o.HR}, {"H_T", o.HT}, {"R_to_T_transmission_ratio", o.TransmissionRatio},
	}
	for _, l := range lists {
		if l.vals != nil && len(l.vals) != len(pairs) {
			return nil, nil, fmt.Errorf("%w: %s has %d values for %d pairs", ErrOverrideLength, l.name, len(l.vals), len(pairs))
		}
	}

	supplied = make([]Params, len(pairs))
	defaults = make([]Params, len(pairs))
	for i, p := range pairs {
		def := DefaultParams(p)
		defaults[i] = def

		sup := def
		pick(&sup.K, o.K, i)
		pick(&sup.GR, o.GR, i)
		pick(&sup.GT, o.GT, i)
		pick(&sup.HR, o.HR, i)
		pick(&sup.HT, o.HT, i)
		pick(&sup.TransmissionRatio, o.TransmissionRatio, i)
		supplied[i] = sup
	}
	return supplied, defaults, nil
}

func pick(dst *float64, vals []float64, i int) {
	if vals != nil {
		*dst = vals[i]
	}
}
