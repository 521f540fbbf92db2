package config

import (
	"fmt"
	"strings"
)

// Cross-check criteria of the normalization fit scan.
const (
	CrossCheckValue = "value"
	CrossCheckShape = "shape"
	CrossCheckBoth  = "both"
)

// TelecoverConfig holds the options of the ring telecover test.
type TelecoverConfig struct {
	// Channel selection; exclusions list field characters
	Channels               []string `json:"channels,omitempty" validate:"omitempty,dive,len=8"`
	ExcludeTelescopeType   []string `json:"exclude_telescope_type,omitempty" validate:"omitempty,dive,len=1"`
	ExcludeChannelType     []string `json:"exclude_channel_type,omitempty" validate:"omitempty,dive,len=1"`
	ExcludeAcquisitionMode []string `json:"exclude_acquisition_mode,omitempty" validate:"omitempty,dive,len=1"`
	ExcludeChannelSubtype  []string `json:"exclude_channel_subtype,omitempty" validate:"omitempty,dive,len=1"`

	// Normalization region (km) and fit scan
	NormalizationRegion []float64 `json:"normalization_region,omitempty" validate:"omitempty,len=2"`
	AutoFit             *bool     `json:"auto_fit,omitempty"`
	RSEMLimit           *float64  `json:"rsem_limit,omitempty" validate:"omitempty,gt=0"`
	CrossCheck          *string   `json:"cross_check,omitempty" validate:"omitempty,oneof=value shape both"`
	FitStep             *float64  `json:"fit_step,omitempty" validate:"omitempty,gt=0"`

	// Smoothing; smoothing_window is the full window width (km)
	Smooth            *bool    `json:"smooth,omitempty"`
	SmoothingWindow   *float64 `json:"smoothing_window,omitempty" validate:"omitempty,gte=0"`
	SmoothExponential *bool    `json:"smooth_exponential,omitempty"`

	// Axis selection
	XLims    []float64 `json:"x_lims,omitempty" validate:"omitempty,len=2"`
	UseRange *bool     `json:"use_range,omitempty"`

	Workers *int `json:"workers,omitempty" validate:"omitempty,min=1"`
}

// LoadTelecoverConfig loads and validates a telecover config.
func LoadTelecoverConfig(path string) (*TelecoverConfig, error) {
	cfg := &TelecoverConfig{}
	if err := loadJSON(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges and interval ordering.
func (c *TelecoverConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := checkInterval("normalization_region", c.NormalizationRegion); err != nil {
		return err
	}
	if len(c.NormalizationRegion) == 2 && c.NormalizationRegion[0] == c.NormalizationRegion[1] {
		return fmt.Errorf("normalization_region must have a non-zero width")
	}
	return checkInterval("x_lims", c.XLims)
}

// GetNormalizationRegion returns the preferred normalization region or the default (km).
func (c *TelecoverConfig) GetNormalizationRegion() [2]float64 {
	return interval(c.NormalizationRegion, [2]float64{1.5, 2.5})
}

// GetAutoFit returns the auto_fit value or the default.
func (c *TelecoverConfig) GetAutoFit() bool {
	if c.AutoFit == nil {
		return true
	}
	return *c.AutoFit
}

// GetRSEMLimit returns the rsem_limit value or the default.
func (c *TelecoverConfig) GetRSEMLimit() float64 {
	if c.RSEMLimit == nil {
		return 0.05
	}
	return *c.RSEMLimit
}

// GetCrossCheck returns the cross_check criterion or the default.
func (c *TelecoverConfig) GetCrossCheck() string {
	if c.CrossCheck == nil {
		return CrossCheckBoth
	}
	return *c.CrossCheck
}

// GetFitStep returns the fit_step value or the default (km).
func (c *TelecoverConfig) GetFitStep() float64 {
	if c.FitStep == nil {
		return 0.1
	}
	return *c.FitStep
}

// GetSmooth returns the smooth value or the default.
func (c *TelecoverConfig) GetSmooth() bool {
	if c.Smooth == nil {
		return true
	}
	return *c.Smooth
}

// GetSmoothingWindow returns the smoothing_window value or the default (km).
func (c *TelecoverConfig) GetSmoothingWindow() float64 {
	if c.SmoothingWindow == nil {
		return 0.1
	}
	return *c.SmoothingWindow
}

// GetSmoothExponential returns the smooth_exponential value or the default.
func (c *TelecoverConfig) GetSmoothExponential() bool {
	if c.SmoothExponential == nil {
		return false
	}
	return *c.SmoothExponential
}

// GetXLims returns the axis limits, nil for the full axis.
func (c *TelecoverConfig) GetXLims() *[2]float64 {
	return intervalPtr(c.XLims)
}

// GetUseRange returns the use_range value or the default (ranges).
func (c *TelecoverConfig) GetUseRange() bool {
	if c.UseRange == nil {
		return true
	}
	return *c.UseRange
}

// GetExclusions returns the exclusion lists joined into field-character sets:
// telescope type, channel type, acquisition mode and channel subtype.
func (c *TelecoverConfig) GetExclusions() (telescope, chType, mode, subtype string) {
	return strings.Join(c.ExcludeTelescopeType, ""),
		strings.Join(c.ExcludeChannelType, ""),
		strings.Join(c.ExcludeAcquisitionMode, ""),
		strings.Join(c.ExcludeChannelSubtype, "")
}

// GetWorkers returns the number of channels processed concurrently.
func (c *TelecoverConfig) GetWorkers() int {
	if c.Workers == nil {
		return 4
	}
	return *c.Workers
}
