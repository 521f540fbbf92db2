package polarization

import "math"

// Retardation is the retardation angle of the receiving optics (degrees) and
// the correction factor kappa it was derived with or from.
type Retardation struct {
	EpsilonDeg float64
	Kappa      float64
}

// RetardationStrategy turns the imbalance psi between the ±45° rounds into a
// retardation estimate.
type RetardationStrategy interface {
	Estimate(psi float64) Retardation
}

// FixedKappa assumes kappa and derives the angle:
// epsilon = 0.5 asin(tan(0.5 asin(psi)) / kappa).
type FixedKappa struct {
	Kappa float64
}

func (f FixedKappa) Estimate(psi float64) Retardation {
	eps := 0.5 * math.Asin(math.Tan(0.5*math.Asin(psi))/f.Kappa)
	return Retardation{EpsilonDeg: eps * 180 / math.Pi, Kappa: f.Kappa}
}

// KnownEpsilon assumes a known angle and solves for kappa:
// kappa = tan(0.5 asin(psi)) / sin(2 epsilon). A zero angle yields NaN.
type KnownEpsilon struct {
	Degrees float64
}

func (k KnownEpsilon) Estimate(psi float64) Retardation {
	s := math.Sin(2 * k.Degrees * math.Pi / 180)
	kappa := math.NaN()
	if s != 0 {
		kappa = math.Tan(0.5*math.Asin(psi)) / s
	}
	return Retardation{EpsilonDeg: k.Degrees, Kappa: kappa}
}
