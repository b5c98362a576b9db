// Package monitor aggregates per-decision observations from the sharing
// filter into ring-level statistics, and renders them as PNG plots or an
// HTML report for visual inspection of the merging behaviour.
package monitor

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/forward-data/multiplicity.report/internal/geom"
	"github.com/forward-data/multiplicity.report/internal/sharing"
)

// maxSamplesPerRing caps the retained observations so a long run cannot grow
// memory without bound. Statistics past the cap still count; only the raw
// points for plotting are dropped.
const maxSamplesPerRing = 500_000

// xyPair is one correlated observation (scatter point).
type xyPair struct {
	X, Y float64
}

// etaPoint is a merged signal at its pseudorapidity.
type etaPoint struct {
	Eta, Mult float64
}

// ringAccum collects one ring slot's observations.
type ringAccum struct {
	signals []float64
	dead    int

	neighborsBefore []xyPair
	neighborsAfter  []xyPair
	mergedVsInput   []xyPair
	byEta           []etaPoint

	counts   sharing.Counts
	classSum [4]float64
}

// HistogramSink implements sharing.Sink, accumulating observations per ring
// slot. All methods are safe for concurrent use, so a single sink serves a
// filter running in parallel mode.
type HistogramSink struct {
	mu    sync.Mutex
	rings [geom.NRingSlots]ringAccum
}

// NewHistogramSink returns an empty sink.
func NewHistogramSink() *HistogramSink {
	return &HistogramSink{}
}

var _ sharing.Sink = (*HistogramSink)(nil)

func (h *HistogramSink) accum(det uint16, ring geom.Ring) *ringAccum {
	slot := geom.RingIndex(det, ring)
	if slot < 0 {
		slot = 0
	}
	return &h.rings[slot]
}

// StripSeen records a strip's working signal; negative values count dead
// channels.
func (h *HistogramSink) StripSeen(det uint16, ring geom.Ring, mult float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.accum(det, ring)
	if mult < 0 {
		a.dead++
		return
	}
	if len(a.signals) < maxSamplesPerRing {
		a.signals = append(a.signals, mult)
	}
}

func (h *HistogramSink) NeighborsBefore(det uint16, ring geom.Ring, mult, multNext float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.accum(det, ring)
	if len(a.neighborsBefore) < maxSamplesPerRing {
		a.neighborsBefore = append(a.neighborsBefore, xyPair{mult, multNext})
	}
}

func (h *HistogramSink) NeighborsAfter(det uint16, ring geom.Ring, prevMerged, merged float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.accum(det, ring)
	if len(a.neighborsAfter) < maxSamplesPerRing {
		a.neighborsAfter = append(a.neighborsAfter, xyPair{prevMerged, merged})
	}
}

func (h *HistogramSink) Classified(det uint16, ring geom.Ring, _ uint16, class sharing.HitClass, sum float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.accum(det, ring)
	switch class {
	case sharing.ClassSingle:
		a.counts.Single++
	case sharing.ClassDouble:
		a.counts.Double++
	case sharing.ClassTriple:
		a.counts.Triple++
	}
	a.classSum[class] += sum
}

func (h *HistogramSink) MergedSignal(det uint16, ring geom.Ring, mult, merged float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.accum(det, ring)
	if len(a.mergedVsInput) < maxSamplesPerRing {
		a.mergedVsInput = append(a.mergedVsInput, xyPair{mult, merged})
	}
}

func (h *HistogramSink) SummedSignal(det uint16, ring geom.Ring, eta, _, merged float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.accum(det, ring)
	if merged > 0 && len(a.byEta) < maxSamplesPerRing {
		a.byEta = append(a.byEta, etaPoint{eta, merged})
	}
}

// Reset drops all accumulated observations.
func (h *HistogramSink) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.rings {
		h.rings[i] = ringAccum{}
	}
}

// RingStats summarises one ring slot's accumulated observations.
type RingStats struct {
	Label string  `json:"label"`
	Seen  int     `json:"seen"`
	Dead  int     `json:"dead"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`

	Counts sharing.Counts `json:"counts"`

	// Total merged signal per classification.
	SumSingle float64 `json:"sum_single"`
	SumDouble float64 `json:"sum_double"`
	SumTriple float64 `json:"sum_triple"`
}

// Stats computes the summary for one ring slot.
func (h *HistogramSink) Stats(det uint16, ring geom.Ring) RingStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	a := h.accum(det, ring)
	st := RingStats{
		Label:     geom.RingLabel(det, ring),
		Seen:      len(a.signals),
		Dead:      a.dead,
		Counts:    a.counts,
		SumSingle: a.classSum[sharing.ClassSingle],
		SumDouble: a.classSum[sharing.ClassDouble],
		SumTriple: a.classSum[sharing.ClassTriple],
	}
	if len(a.signals) > 0 {
		st.Mean = stat.Mean(a.signals, nil)
		st.Std = stat.StdDev(a.signals, nil)
		st.Min = floats.Min(a.signals)
		st.Max = floats.Max(a.signals)
	}
	return st
}

// Distribution bins one ring's signals onto nbins equal-width bins spanning
// [0, max]. Returns bin centers and counts; nil when the ring holds no
// samples or the span is empty.
func (h *HistogramSink) Distribution(det uint16, ring geom.Ring, nbins int, max float64) (centers, counts []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a := h.accum(det, ring)
	if len(a.signals) == 0 || nbins <= 0 || max <= 0 {
		return nil, nil
	}

	// stat.Histogram requires sorted samples strictly inside the divider
	// range; widen the top edge so a sample equal to max still lands in
	// the last bin.
	sorted := append([]float64(nil), a.signals...)
	sort.Float64s(sorted)
	dividers := floats.Span(make([]float64, nbins+1), 0, math.Nextafter(max, math.Inf(1)))
	counts = stat.Histogram(nil, dividers, sorted, nil)

	centers = make([]float64, nbins)
	for i := range centers {
		centers[i] = (dividers[i] + dividers[i+1]) / 2
	}
	return centers, counts
}

// AllStats returns the summaries for the five ring slots in topology order.
func (h *HistogramSink) AllStats() []RingStats {
	out := make([]RingStats, 0, geom.NRingSlots)
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		out = append(out, h.Stats(det, ring))
	}
	return out
}
