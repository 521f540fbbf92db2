// Package profile implements the numeric reductions applied to single lidar
// profiles: NaN-aware statistics, the sliding-window smoother and averaging
// over a coordinate window.
//
// Missing samples are NaN throughout. They are skipped by every reduction and
// are never replaced by zero; a reduction with no valid samples yields NaN.
package profile
