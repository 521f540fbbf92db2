// Package config loads the JSON option files of the calibration workflows.
//
// Every option is optional. Fields are pointers or slices so that an omitted
// key can be told apart from a zero value, and the Get* accessors return the
// documented default for omitted keys.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

var validate = validator.New()

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// loadJSON reads a .json file of at most 1MB into dst.
func loadJSON(path string, dst interface{}) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return nil
}

func checkInterval(name string, v []float64) error {
	if len(v) == 2 && v[0] > v[1] {
		return fmt.Errorf("%s lower bound %g above upper bound %g", name, v[0], v[1])
	}
	return nil
}

func interval(v []float64, def [2]float64) [2]float64 {
	if len(v) != 2 {
		return def
	}
	return [2]float64{v[0], v[1]}
}

func intervalPtr(v []float64) *[2]float64 {
	if len(v) != 2 {
		return nil
	}
	return &[2]float64{v[0], v[1]}
}
