package polarization

import (
	"math"

	"github.com/banshee-data/lidarcal/internal/profile"
)

// CombinedFactor combines the calibration ratios of the two rounds,
// sqrt(eta_m45 * eta_p45).
func CombinedFactor(etaM45, etaP45 float64) float64 {
	return math.Sqrt(etaM45 * etaP45)
}

// CorrectedDepolarization corrects the measured ratio deltaS for the gain and
// cross-talk parameters of the pair:
//
//	delta = (deltaS (G_T + H_T) - (G_R + H_R)) / ((G_R - H_R) - deltaS (G_T - H_T))
//
// A zero denominator yields NaN.
func CorrectedDepolarization(deltaS float64, p Params) float64 {
	num := deltaS*(p.GT+p.HT) - (p.GR + p.HR)
	den := (p.GR - p.HR) - deltaS*(p.GT-p.HT)
	return profile.Ratio(num, den)
}

// AtmosphericParameter converts a molecular linear depolarization ratio into
// the atmospheric parameter a_m = (1 - mldr) / (1 + mldr).
func AtmosphericParameter(mldr float64) float64 {
	return profile.Ratio(1-mldr, 1+mldr)
}

// MolecularDepolarization converts the atmospheric parameter back into the
// molecular depolarization ratio (1 - a_m) / (1 + a_m).
func MolecularDepolarization(am float64) float64 {
	return profile.Ratio(1-am, 1+am)
}

// Imbalance is the relative difference between the +45° and -45° calibration
// ratios, (eta_p45 - eta_m45) / (eta_p45 + eta_m45).
func Imbalance(etaP45, etaM45 float64) float64 {
	return profile.Ratio(etaP45-etaM45, etaP45+etaM45)
}

func mapFloats(xs []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = f(v)
	}
	return out
}
