package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/banshee-data/lidarcal/internal/polarization"
	"github.com/banshee-data/lidarcal/internal/signal"
	"github.com/banshee-data/lidarcal/internal/telecover"
)

// bundle is the JSON measurement file read by -input. Signal maps hold one
// row per time step (cycle) for each channel id.
type bundle struct {
	FillValue *float64 `json:"fill_value,omitempty"`

	Minus45             map[string][][]float64     `json:"minus45,omitempty"`
	Plus45              map[string][][]float64     `json:"plus45,omitempty"`
	Rayleigh            map[string][][]float64     `json:"rayleigh,omitempty"`
	CalibrationGeometry map[string]signal.Geometry `json:"calibration_geometry,omitempty"`
	RayleighGeometry    map[string]signal.Geometry `json:"rayleigh_geometry,omitempty"`
	MLDR                map[string][]float64       `json:"mldr,omitempty"`

	Outer    map[string][][]float64     `json:"outer,omitempty"`
	Inner    map[string][][]float64     `json:"inner,omitempty"`
	Geometry map[string]signal.Geometry `json:"geometry,omitempty"`
}

func loadBundle(path string) (*bundle, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var b bundle
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return &b, nil
}

// cube builds a signal cube from a channel map. Channels are added in id
// order; the bin count is taken from the first row.
func (b *bundle) cube(name string, data map[string][][]float64) (*signal.Cube, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("input has no %s signals", name)
	}
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	first := data[ids[0]]
	if len(first) == 0 {
		return nil, fmt.Errorf("%s: channel %s has no rows", name, ids[0])
	}
	c := signal.NewCube(len(first[0]))
	if b.FillValue != nil {
		c.FillValue = *b.FillValue
	}
	for _, id := range ids {
		if err := c.Set(id, data[id]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return c, nil
}

func (b *bundle) polarizationInput() (polarization.Input, error) {
	var in polarization.Input
	var err error
	if in.Minus45, err = b.cube("minus45", b.Minus45); err != nil {
		return in, err
	}
	if in.Plus45, err = b.cube("plus45", b.Plus45); err != nil {
		return in, err
	}
	if in.Rayleigh, err = b.cube("rayleigh", b.Rayleigh); err != nil {
		return in, err
	}
	in.CalibrationGeometry = b.CalibrationGeometry
	in.RayleighGeometry = b.RayleighGeometry
	in.MLDR = b.MLDR
	return in, nil
}

func (b *bundle) telecoverInput() (telecover.Input, error) {
	var in telecover.Input
	var err error
	if in.Outer, err = b.cube("outer", b.Outer); err != nil {
		return in, err
	}
	if in.Inner, err = b.cube("inner", b.Inner); err != nil {
		return in, err
	}
	in.Geometry = b.Geometry
	return in, nil
}
