// Package polarization derives polarization calibration coefficients from a
// ±45° calibration measurement and a Rayleigh reference measurement.
//
// For each receiver/transmitter channel pair the signal ratios of the -45° and
// +45° rounds give the calibration factor eta; the Rayleigh round, scaled by
// eta and corrected for gain (G) and cross-talk (H), gives the volume
// depolarization ratio; the imbalance between the two rounds gives an estimate
// of the retardation of the receiving optics.
package polarization
