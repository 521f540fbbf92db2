package telecover

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/lidarcal/internal/profile"
	"github.com/banshee-data/lidarcal/internal/signal"
)

// Options control the normalization of one channel.
type Options struct {
	// Region is the preferred normalization region [lower, upper].
	Region    [2]float64
	AutoFit   bool
	Step      float64
	RSEMLimit float64

	// CrossCheck is one of CrossCheckValue, CrossCheckShape or CrossCheckBoth.
	CrossCheck string
	Sector     SectorOptions
}

// Result is the normalization of one channel.
type Result struct {
	Channel string
	Axis    signal.Axis

	// Iterations is the common cycle count of the two sectors.
	Iterations int

	// Ratio is inner/outer of the cycle-averaged sectors and SectorDev the
	// population deviation between them, per bin.
	Ratio     []float64
	SectorDev []float64

	Bounds Bounds
	Region Region

	Outer *SectorResult
	Inner *SectorResult

	// Err is set by Run when the channel could not be processed.
	Err error
}

// Normalize selects the normalization region of a channel from its outer and
// inner sector cycles and normalizes both sectors to it. A fit scan without a
// passing window is not an error; Region.Fit.Err reports it.
func Normalize(outer, inner mat.Matrix, coords []float64, opts Options) (*Result, error) {
	outerRows, outerBins := outer.Dims()
	innerRows, innerBins := inner.Dims()
	if outerBins != len(coords) || innerBins != len(coords) {
		return nil, fmt.Errorf("%w: sectors have %d and %d bins, %d coordinates",
			profile.ErrShapeMismatch, outerBins, innerBins, len(coords))
	}

	res := &Result{Iterations: min(outerRows, innerRows)}

	yo := signal.ColumnMean(outer)
	yi := signal.ColumnMean(inner)
	res.Ratio, _ = profile.Divide(yi, yo)
	res.SectorDev = make([]float64, len(coords))
	ones := make([]float64, len(coords))
	for j := range coords {
		res.SectorDev[j] = profile.NanStd([]float64{yo[j], yi[j]})
		ones[j] = 1
	}

	res.Bounds = SearchBounds(opts.Region)
	var cands []Candidate
	if opts.AutoFit {
		var err error
		cands, err = ScanStats(res.SectorDev, ones, coords, ScanOptions{
			Bounds:     res.Bounds,
			Anchor:     opts.Region,
			Step:       opts.Step,
			RSEMLimit:  opts.RSEMLimit,
			CrossCheck: opts.CrossCheck,
		})
		if err != nil {
			return nil, fmt.Errorf("fit scan: %w", err)
		}
	}
	res.Region = SelectRegion(cands, opts.Region, opts.AutoFit)

	var err error
	w := res.Region.Window()
	if res.Outer, err = ProcessSector(coords, outer, res.Iterations, w, opts.Sector); err != nil {
		return nil, fmt.Errorf("outer sector: %w", err)
	}
	if res.Inner, err = ProcessSector(coords, inner, res.Iterations, w, opts.Sector); err != nil {
		return nil, fmt.Errorf("inner sector: %w", err)
	}
	return res, nil
}
