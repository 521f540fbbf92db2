// Package channel parses ATLAS-style lidar channel identifiers into typed
// descriptors and resolves the channel sets each calibration workflow operates on.
//
// Identifier layout (8 characters): a 4-character wavelength prefix followed by
// the telescope type, channel type, acquisition mode and channel subtype, one
// character each. Polarization calibration pairs receiver ('r') with
// transmitter ('t') subtypes; telecover filters channels by field.
//
// No signal data is handled here.
package channel
