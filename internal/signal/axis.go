package signal

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAxis is returned when no bin of the coordinate array lies inside the
// requested limits.
var ErrInvalidAxis = errors.New("invalid axis")

const (
	LabelRange  = "Range [km]"
	LabelHeight = "Height [km]"
)

// Axis describes the vertical axis of one channel: the coordinates used for it
// and the bin span covered by the display limits.
type Axis struct {
	LowerBin int
	UpperBin int
	Lower    float64
	Upper    float64
	Values   []float64
	Label    string
}

// NewAxis builds the axis from the channel's heights or ranges. A nil limits
// pointer selects the full coordinate span. LowerBin is the first bin at or
// above the lower limit and UpperBin the last bin at or below the upper limit.
func NewAxis(heights, ranges []float64, limits *[2]float64, useRange bool) (Axis, error) {
	values, label := heights, LabelHeight
	if useRange {
		values, label = ranges, LabelRange
	}
	if len(values) == 0 {
		return Axis{}, fmt.Errorf("%w: empty coordinate array", ErrInvalidAxis)
	}

	lower, upper := values[0], values[len(values)-1]
	if limits != nil {
		lower, upper = limits[0], limits[1]
	}
	if lower > upper {
		return Axis{}, fmt.Errorf("%w: lower limit %g above upper limit %g", ErrInvalidAxis, lower, upper)
	}

	lbin, ubin := -1, -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if lbin < 0 && v >= lower {
			lbin = i
		}
		if v <= upper {
			ubin = i
		}
	}
	if lbin < 0 || ubin < 0 || lbin > ubin {
		return Axis{}, fmt.Errorf("%w: no bins within [%g, %g]", ErrInvalidAxis, lower, upper)
	}

	return Axis{
		LowerBin: lbin,
		UpperBin: ubin,
		Lower:    lower,
		Upper:    upper,
		Values:   append([]float64(nil), values...),
		Label:    label,
	}, nil
}

// Span returns the coordinates between LowerBin and UpperBin inclusive.
func (a Axis) Span() []float64 {
	return a.Values[a.LowerBin : a.UpperBin+1]
}

// Geometry holds the vertical coordinates of one channel.
type Geometry struct {
	Heights []float64 `json:"heights"`
	Ranges  []float64 `json:"ranges"`
}

// Axis builds the channel's axis, see NewAxis.
func (g Geometry) Axis(limits *[2]float64, useRange bool) (Axis, error) {
	return NewAxis(g.Heights, g.Ranges, limits, useRange)
}
