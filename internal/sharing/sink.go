package sharing

import "github.com/forward-data/multiplicity.report/internal/geom"

// Sink receives per-decision observations from the filter for diagnostic
// aggregation. Implementations must not fail the scan: methods return
// nothing and should swallow their own errors. When the filter runs with
// Parallel enabled the sink is called from several goroutines and must be
// safe for concurrent use.
type Sink interface {
	// StripSeen reports the working multiplicity of every processed
	// strip; dead or invalid strips report -1.
	StripSeen(det uint16, ring geom.Ring, mult float64)
	// NeighborsBefore reports a strip and its right neighbor before
	// merging.
	NeighborsBefore(det uint16, ring geom.Ring, mult, multNext float64)
	// NeighborsAfter reports the previous strip's merged output against
	// the current one.
	NeighborsAfter(det uint16, ring geom.Ring, prevMerged, merged float64)
	// Classified reports a merge decision and the summed signal.
	Classified(det uint16, ring geom.Ring, strip uint16, class HitClass, sum float64)
	// MergedSignal correlates a strip's pre-merge and post-merge values.
	MergedSignal(det uint16, ring geom.Ring, mult, merged float64)
	// SummedSignal reports the merged signal at its eta-phi position.
	// phi is in radians.
	SummedSignal(det uint16, ring geom.Ring, eta, phi, merged float64)
}

// NopSink discards every observation. It is the default sink.
type NopSink struct{}

func (NopSink) StripSeen(uint16, geom.Ring, float64)                     {}
func (NopSink) NeighborsBefore(uint16, geom.Ring, float64, float64)      {}
func (NopSink) NeighborsAfter(uint16, geom.Ring, float64, float64)       {}
func (NopSink) Classified(uint16, geom.Ring, uint16, HitClass, float64)  {}
func (NopSink) MergedSignal(uint16, geom.Ring, float64, float64)         {}
func (NopSink) SummedSignal(uint16, geom.Ring, float64, float64, float64) {}

var _ Sink = NopSink{}
