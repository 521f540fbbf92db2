// Package telecover normalizes ring telecover measurements. For every channel
// the outer and inner sector signals are averaged over their acquisition
// cycles, an adaptive scan picks a normalization region where the two sectors
// agree, and each sector is scaled to unity inside that region.
package telecover
