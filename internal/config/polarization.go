package config

import "fmt"

// Retardation modes. fixed_kappa derives the retardation angle from an assumed
// correction factor kappa; known_epsilon derives kappa from a known angle.
const (
	RetardationFixedKappa   = "fixed_kappa"
	RetardationKnownEpsilon = "known_epsilon"
)

// PolarizationConfig holds the options of the ±45° polarization calibration.
// Per-pair overrides (K, G_R, ...) carry one value per resolved channel pair.
type PolarizationConfig struct {
	// Channel pairing; both empty means automatic pairing
	ChR []string `json:"ch_r,omitempty" validate:"omitempty,dive,len=8"`
	ChT []string `json:"ch_t,omitempty" validate:"omitempty,dive,len=8"`

	// Per-pair calibration parameter overrides
	K                     []float64 `json:"K,omitempty" validate:"omitempty,dive,gt=0"`
	GR                    []float64 `json:"G_R,omitempty"`
	GT                    []float64 `json:"G_T,omitempty"`
	HR                    []float64 `json:"H_R,omitempty"`
	HT                    []float64 `json:"H_T,omitempty"`
	RToTTransmissionRatio []float64 `json:"R_to_T_transmission_ratio,omitempty" validate:"omitempty,dive,gt=0"`

	// Averaging windows (km)
	CalibrationHeight     *float64 `json:"calibration_height,omitempty" validate:"omitempty,gte=0"`
	HalfCalibrationWindow *float64 `json:"half_calibration_window,omitempty" validate:"omitempty,gt=0"`
	RayleighHeight        *float64 `json:"rayleigh_height,omitempty" validate:"omitempty,gte=0"`
	HalfRayleighWindow    *float64 `json:"half_rayleigh_window,omitempty" validate:"omitempty,gt=0"`

	// Smoothing
	SmoothingRange    []float64 `json:"smoothing_range,omitempty" validate:"omitempty,len=2"`
	HalfWindow        []float64 `json:"half_window,omitempty" validate:"omitempty,len=2,dive,gte=0"`
	SmoothExponential *bool     `json:"smooth_exponential,omitempty"`

	// Axis selection
	YLimsCalibration []float64 `json:"y_lims_calibration,omitempty" validate:"omitempty,len=2"`
	YLimsRayleigh    []float64 `json:"y_lims_rayleigh,omitempty" validate:"omitempty,len=2"`
	UseRange         *bool     `json:"use_range,omitempty"`

	// Retardation estimate
	RetardationMode *string  `json:"retardation_mode,omitempty" validate:"omitempty,oneof=fixed_kappa known_epsilon"`
	Kappa           *float64 `json:"kappa,omitempty" validate:"omitempty,gt=0"`
	KnownEpsilonDeg *float64 `json:"known_epsilon_deg,omitempty"`

	Workers *int `json:"workers,omitempty" validate:"omitempty,min=1"`
}

// LoadPolarizationConfig loads and validates a polarization calibration config.
func LoadPolarizationConfig(path string) (*PolarizationConfig, error) {
	cfg := &PolarizationConfig{}
	if err := loadJSON(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges and the consistency of paired options.
func (c *PolarizationConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.ChR) != len(c.ChT) {
		return fmt.Errorf("ch_r and ch_t must have the same length, got %d and %d", len(c.ChR), len(c.ChT))
	}
	if err := checkInterval("smoothing_range", c.SmoothingRange); err != nil {
		return err
	}
	if err := checkInterval("y_lims_calibration", c.YLimsCalibration); err != nil {
		return err
	}
	if err := checkInterval("y_lims_rayleigh", c.YLimsRayleigh); err != nil {
		return err
	}
	if c.GetRetardationMode() == RetardationKnownEpsilon && c.KnownEpsilonDeg == nil {
		return fmt.Errorf("retardation_mode %q requires known_epsilon_deg", RetardationKnownEpsilon)
	}
	return nil
}

// GetCalibrationHeight returns the calibration_height value or the default.
func (c *PolarizationConfig) GetCalibrationHeight() float64 {
	if c.CalibrationHeight == nil {
		return 3.0
	}
	return *c.CalibrationHeight
}

// GetHalfCalibrationWindow returns the half_calibration_window value or the default.
func (c *PolarizationConfig) GetHalfCalibrationWindow() float64 {
	if c.HalfCalibrationWindow == nil {
		return 0.5
	}
	return *c.HalfCalibrationWindow
}

// GetRayleighHeight returns the rayleigh_height value or the default.
func (c *PolarizationConfig) GetRayleighHeight() float64 {
	if c.RayleighHeight == nil {
		return 3.0
	}
	return *c.RayleighHeight
}

// GetHalfRayleighWindow returns the half_rayleigh_window value or the default.
func (c *PolarizationConfig) GetHalfRayleighWindow() float64 {
	if c.HalfRayleighWindow == nil {
		return 0.5
	}
	return *c.HalfRayleighWindow
}

// GetSmoothingRange returns the smoothing_range interval or the default (km).
func (c *PolarizationConfig) GetSmoothingRange() [2]float64 {
	return interval(c.SmoothingRange, [2]float64{0, 20})
}

// GetHalfWindow returns the half_window at the bottom and top of the smoothing range.
func (c *PolarizationConfig) GetHalfWindow() [2]float64 {
	return interval(c.HalfWindow, [2]float64{0.05, 0.25})
}

// GetSmoothExponential returns the smooth_exponential value or the default.
func (c *PolarizationConfig) GetSmoothExponential() bool {
	if c.SmoothExponential == nil {
		return false
	}
	return *c.SmoothExponential
}

// GetYLimsCalibration returns the calibration axis limits, nil for the full axis.
func (c *PolarizationConfig) GetYLimsCalibration() *[2]float64 {
	return intervalPtr(c.YLimsCalibration)
}

// GetYLimsRayleigh returns the Rayleigh axis limits, nil for the full axis.
func (c *PolarizationConfig) GetYLimsRayleigh() *[2]float64 {
	return intervalPtr(c.YLimsRayleigh)
}

// GetUseRange returns the use_range value or the default (heights).
func (c *PolarizationConfig) GetUseRange() bool {
	if c.UseRange == nil {
		return false
	}
	return *c.UseRange
}

// GetRetardationMode returns the retardation_mode value or the default.
func (c *PolarizationConfig) GetRetardationMode() string {
	if c.RetardationMode == nil {
		return RetardationFixedKappa
	}
	return *c.RetardationMode
}

// GetKappa returns the kappa value or the default.
func (c *PolarizationConfig) GetKappa() float64 {
	if c.Kappa == nil {
		return 1.0
	}
	return *c.Kappa
}

// GetKnownEpsilonDeg returns the known_epsilon_deg value or zero.
func (c *PolarizationConfig) GetKnownEpsilonDeg() float64 {
	if c.KnownEpsilonDeg == nil {
		return 0
	}
	return *c.KnownEpsilonDeg
}

// GetWorkers returns the number of channel pairs processed concurrently.
func (c *PolarizationConfig) GetWorkers() int {
	if c.Workers == nil {
		return 4
	}
	return *c.Workers
}
