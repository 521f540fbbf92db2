package telecover

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lidarcal/internal/config"
	"github.com/banshee-data/lidarcal/internal/profile"
)

// ErrFitNonConvergent is reported when no candidate window of the fit scan
// passes. It is a diagnostic: the default region is used instead.
var ErrFitNonConvergent = errors.New("normalization fit did not converge")

// Cross-check criteria.
const (
	CrossCheckValue = config.CrossCheckValue
	CrossCheckShape = config.CrossCheckShape
	CrossCheckBoth  = config.CrossCheckBoth
)

// Search limits of the adaptive scan before they are widened to the caller's
// default region.
const (
	searchLower    = 1.0
	searchUpper    = 3.0
	searchMinWidth = 0.5
	searchMaxWidth = 2.0
)

// minSamples is the smallest candidate window the scan evaluates.
const minSamples = 3

// Bounds is the clamped search interval of the fit scan.
type Bounds struct {
	Lower    float64
	Upper    float64
	MinWidth float64
	MaxWidth float64
}

// SearchBounds widens the fixed search limits so that they always contain the
// default region: the interval [min(1, r0), max(3, r1)] with window widths
// from min(0.5, r1-r0) to max(2, r1-r0).
func SearchBounds(region [2]float64) Bounds {
	width := region[1] - region[0]
	return Bounds{
		Lower:    math.Min(searchLower, region[0]),
		Upper:    math.Max(searchUpper, region[1]),
		MinWidth: math.Min(searchMinWidth, width),
		MaxWidth: math.Max(searchMaxWidth, width),
	}
}

// Contains reports whether [lower, upper] lies inside the search interval.
func (b Bounds) Contains(lower, upper float64) bool {
	const eps = 1e-9
	return lower >= b.Lower-eps && upper <= b.Upper+eps
}

// ScanOptions configure ScanStats.
type ScanOptions struct {
	Bounds Bounds

	// Anchor is the default region. The candidate grid is laid out around it
	// so that the default window is always one of the candidates. An empty
	// anchor falls back to Bounds.Lower and Bounds.MinWidth.
	Anchor [2]float64

	Step       float64
	RSEMLimit  float64
	CrossCheck string
}

// grid returns the first start and width of the candidate grid and the
// offsets, in steps, of the smallest start and width inside the bounds.
func (o ScanOptions) grid() (start, width float64, j0, k0 int) {
	b := o.Bounds
	start, width = b.Lower, b.MinWidth
	if o.Anchor[1] > o.Anchor[0] {
		start, width = o.Anchor[0], o.Anchor[1]-o.Anchor[0]
	}
	j0 = int(math.Ceil((b.Lower-start)/o.Step - 1e-6))
	k0 = int(math.Ceil((b.MinWidth-width)/o.Step - 1e-6))
	return start, width, j0, k0
}

// Candidate holds the statistics of one candidate window. The statistics are
// computed on r = y1/y2 inside the window.
type Candidate struct {
	Lower float64
	Upper float64
	N     int

	Mean float64
	SEM  float64
	RSEM float64

	// Slope and SlopeErr are the least-squares slope of r and its standard
	// error. NormDerivative is the change of r across the window relative to
	// its mean.
	Slope          float64
	SlopeErr       float64
	NormDerivative float64

	// Shape is the fraction of sign changes between consecutive detrended
	// residuals; noise sits near 0.5, residual structure well below it.
	Shape float64

	ValueCheck bool
	ShapeCheck bool
	Pass       bool
}

// ScanStats evaluates every candidate window of the search interval. Starts
// and widths lie on a Step grid through the anchor region, from Lower and
// MinWidth up to MaxWidth, keeping only windows that end inside the interval.
// Candidates are returned in scan order: by width, then by start.
func ScanStats(y1, y2, coords []float64, opts ScanOptions) ([]Candidate, error) {
	if len(y1) != len(coords) || len(y2) != len(coords) {
		return nil, fmt.Errorf("%w: %d and %d values, %d coordinates", profile.ErrShapeMismatch, len(y1), len(y2), len(coords))
	}
	if opts.Step <= 0 {
		return nil, fmt.Errorf("fit step must be positive, got %g", opts.Step)
	}
	ratio, err := profile.Divide(y1, y2)
	if err != nil {
		return nil, err
	}

	b := opts.Bounds
	eps := opts.Step * 1e-6
	start, width0, j0, k0 := opts.grid()
	var out []Candidate
	for k := k0; ; k++ {
		width := width0 + float64(k)*opts.Step
		if width > b.MaxWidth+eps {
			break
		}
		for j := j0; ; j++ {
			lower := start + float64(j)*opts.Step
			upper := lower + width
			if upper > b.Upper+eps {
				break
			}
			out = append(out, evaluate(ratio, y2, coords, lower, upper, opts))
		}
	}
	return out, nil
}

func evaluate(ratio, ref, coords []float64, lower, upper float64, opts ScanOptions) Candidate {
	c := Candidate{
		Lower: lower, Upper: upper,
		Mean: math.NaN(), SEM: math.NaN(), RSEM: math.NaN(),
		Slope: math.NaN(), SlopeErr: math.NaN(), NormDerivative: math.NaN(), Shape: math.NaN(),
	}

	var xs, ys, refs []float64
	for i, x := range coords {
		if x < lower || x > upper || math.IsNaN(ratio[i]) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, ratio[i])
		refs = append(refs, ref[i])
	}
	c.N = len(ys)
	if c.N < minSamples {
		return c
	}

	mean, std := stat.PopMeanStdDev(ys, nil)
	c.Mean = mean
	c.SEM = std / math.Sqrt(float64(c.N))
	c.RSEM = relative(c.SEM, mean)

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	c.Slope = beta
	c.SlopeErr = slopeError(xs, ys, alpha, beta)
	c.NormDerivative = relative(beta*(upper-lower), mean)
	c.Shape = signChanges(xs, ys, alpha, beta)

	c.ValueCheck = valueCheck(ys)
	_, refBeta := stat.LinearRegression(xs, refs, nil, false)
	c.ShapeCheck = math.Abs(beta-refBeta) <= 2*c.SlopeErr

	var cross bool
	switch opts.CrossCheck {
	case CrossCheckValue:
		cross = c.ValueCheck
	case CrossCheckShape:
		cross = c.ShapeCheck
	default:
		cross = c.ValueCheck && c.ShapeCheck
	}
	c.Pass = c.RSEM <= opts.RSEMLimit && cross
	return c
}

// relative is |v/mean|, zero when v is zero.
func relative(v, mean float64) float64 {
	if v == 0 {
		return 0
	}
	return math.Abs(v / mean)
}

func slopeError(xs, ys []float64, alpha, beta float64) float64 {
	n := len(xs)
	if n < minSamples {
		return math.NaN()
	}
	xm := stat.Mean(xs, nil)
	var ssr, sxx float64
	for i := range xs {
		r := ys[i] - (alpha + beta*xs[i])
		ssr += r * r
		d := xs[i] - xm
		sxx += d * d
	}
	if sxx == 0 {
		return math.NaN()
	}
	return math.Sqrt(ssr / float64(n-2) / sxx)
}

func signChanges(xs, ys []float64, alpha, beta float64) float64 {
	var changes, pairs int
	prev := 0.0
	for i := range xs {
		r := ys[i] - (alpha + beta*xs[i])
		if math.Abs(r) < 1e-12 {
			continue
		}
		if prev != 0 {
			pairs++
			if (r > 0) != (prev > 0) {
				changes++
			}
		}
		prev = r
	}
	if pairs == 0 {
		return 0
	}
	return float64(changes) / float64(pairs)
}

// valueCheck compares the means of the lower and upper half of the window.
// They must agree within twice their combined standard error.
func valueCheck(ys []float64) bool {
	half := len(ys) / 2
	m1, s1 := stat.PopMeanStdDev(ys[:half], nil)
	m2, s2 := stat.PopMeanStdDev(ys[half:], nil)
	se := math.Hypot(s1/math.Sqrt(float64(half)), s2/math.Sqrt(float64(len(ys)-half)))
	return math.Abs(m1-m2) <= 2*se
}

// FitReport describes how the normalization region was chosen.
type FitReport struct {
	Default    [2]float64
	AutoFit    bool
	Candidates int
	Passed     int
	Converged  bool

	// Selected is the chosen candidate; nil when the default region is used.
	Selected *Candidate
}

// Err returns ErrFitNonConvergent when the scan found no passing window.
func (r FitReport) Err() error {
	if r.AutoFit && !r.Converged {
		return fmt.Errorf("%w: 0 of %d candidates passed, using default region [%g, %g]",
			ErrFitNonConvergent, r.Candidates, r.Default[0], r.Default[1])
	}
	return nil
}

// Region is the selected normalization region.
type Region struct {
	Lower float64
	Upper float64
	Fit   FitReport
}

// Window returns the region as an averaging window.
func (r Region) Window() profile.Window {
	return profile.Between(r.Lower, r.Upper)
}

// SelectRegion picks the passing candidate nearest the default region, by
// |start - r0| + |end - r1|, then by |start - r0|, then by scan order. With
// autoFit unset, or when nothing passes, the default region is returned.
func SelectRegion(cands []Candidate, def [2]float64, autoFit bool) Region {
	region := Region{
		Lower: def[0],
		Upper: def[1],
		Fit:   FitReport{Default: def, AutoFit: autoFit, Candidates: len(cands)},
	}
	if !autoFit {
		region.Fit.Converged = true
		return region
	}

	const tie = 1e-9
	best := -1
	var bestDist, bestStart float64
	for i := range cands {
		c := &cands[i]
		if !c.Pass {
			continue
		}
		region.Fit.Passed++
		dist := math.Abs(c.Lower-def[0]) + math.Abs(c.Upper-def[1])
		start := math.Abs(c.Lower - def[0])
		if best < 0 || dist < bestDist-tie || (math.Abs(dist-bestDist) <= tie && start < bestStart-tie) {
			best, bestDist, bestStart = i, dist, start
		}
	}
	if best < 0 {
		return region
	}

	sel := cands[best]
	region.Lower, region.Upper = sel.Lower, sel.Upper
	region.Fit.Converged = true
	region.Fit.Selected = &sel
	return region
}
