// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// AssertNaN fails the test unless v is NaN.
func AssertNaN(t *testing.T, name string, v float64) {
	t.Helper()
	if !math.IsNaN(v) {
		t.Errorf("%s = %v, want NaN", name, v)
	}
}

// Constant returns a profile of n samples all equal to v.
func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Span returns n evenly spaced coordinates from lo to hi inclusive.
func Span(n int, lo, hi float64) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Repeat stacks rows copies of profile into a cycles × bins slice.
func Repeat(rows int, profile []float64) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = append([]float64(nil), profile...)
	}
	return out
}
