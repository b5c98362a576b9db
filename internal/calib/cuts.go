// Package calib exposes calibration cuts to the sharing filter. Cuts are
// produced elsewhere (fits of per-ring energy-loss distributions); this
// package only models how their outputs are looked up and persisted.
package calib

import "github.com/forward-data/multiplicity.report/internal/geom"

// Missing is returned when no calibration exists for a bin. It is strictly
// negative so that every threshold comparison in the sharing filter degrades
// to "never fires": no physical signal is below a negative low cut's notion
// of noise, and nothing is smaller than a negative high cut.
const Missing = -1024.0

// Provider supplies the two eta-dependent thresholds per ring. Implementations
// must be read-only during a scan; rebuilds happen between events under
// external synchronization.
type Provider interface {
	// LowCut is the minimum signal considered real, or Missing.
	LowCut(det uint16, ring geom.Ring, eta float64) float64
	// HighCut separates a full single-strip hit from a partial, shared
	// deposit, or Missing.
	HighCut(det uint16, ring geom.Ring, eta float64) float64
}

// FixedCuts applies the same two thresholds everywhere. Useful for tests and
// for quick configurations without a fitted calibration.
type FixedCuts struct {
	Low  float64
	High float64
}

// LowCut implements Provider.
func (c FixedCuts) LowCut(uint16, geom.Ring, float64) float64 { return c.Low }

// HighCut implements Provider.
func (c FixedCuts) HighCut(uint16, geom.Ring, float64) float64 { return c.High }

// NoCuts reports Missing for every bin, disabling all threshold features.
type NoCuts struct{}

// LowCut implements Provider.
func (NoCuts) LowCut(uint16, geom.Ring, float64) float64 { return Missing }

// HighCut implements Provider.
func (NoCuts) HighCut(uint16, geom.Ring, float64) float64 { return Missing }
