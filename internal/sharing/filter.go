package sharing

import (
	"math"
	"sync"

	"github.com/forward-data/multiplicity.report/internal/calib"
	"github.com/forward-data/multiplicity.report/internal/deadmap"
	"github.com/forward-data/multiplicity.report/internal/geom"
)

// Filter merges shared strip signals for whole events. Configure it once
// before the first event; it carries no per-event state of its own, so one
// Filter may process any number of events sequentially.
type Filter struct {
	// Cuts supplies the low and high thresholds. Required.
	Cuts calib.Provider
	// Dead marks channels to force invalid. Optional.
	Dead *deadmap.Map
	// Diag receives per-decision observations. Optional; nil means no
	// diagnostics.
	Diag Sink

	// CorrectAngles selects the correction state working signals are
	// normalized to. When it is off, the inverse correction is applied
	// to the merged output instead; the output frame ends up
	// angle-corrected either way.
	CorrectAngles bool
	// ThreeStripSharing allows a deferred two-strip candidate to absorb
	// a third strip. Default on.
	ThreeStripSharing bool
	// InvalidIsEmpty treats an invalid input reading as an empty strip.
	// Needed for data reconstructed before dead channels were flagged
	// upstream; the dead map is unaffected.
	InvalidIsEmpty bool
	// RecalculateEta recomputes each strip's pseudorapidity from the
	// ring geometry and the event vertex, rescaling the signal by the
	// ratio of incidence-angle cosines.
	RecalculateEta bool
	// Parallel scans the five ring slots concurrently. The per-sector
	// order is always sequential; Diag must be safe for concurrent use
	// when this is on.
	Parallel bool
}

// NewFilter returns a filter with the default configuration: three-strip
// sharing on, everything else off.
func NewFilter(cuts calib.Provider) *Filter {
	return &Filter{Cuts: cuts, ThreeStripSharing: true}
}

func (f *Filter) sink() Sink {
	if f.Diag == nil {
		return NopSink{}
	}
	return f.Diag
}

func (f *Filter) isDead(det uint16, ring geom.Ring, sector, strip uint16) bool {
	return f.Dead != nil && f.Dead.IsDead(det, ring, sector, strip)
}

// Process scans one event and returns the merged frame with the event's
// classification counts. The input is read-only; the output has the same
// shape, with shared deposits summed into one representative strip, the
// absorbed strips zeroed, and unusable strips set to InvalidMult.
func (f *Filter) Process(in *EventFrame) (*EventFrame, Counts, error) {
	if !in.valid() {
		return nil, Counts{}, ErrEmptyEvent
	}

	out := newOutputFrame()
	out.VertexZ = in.VertexZ
	out.AngleCorrected = true

	var total Counts
	if f.Parallel {
		var wg sync.WaitGroup
		slotCounts := make([]Counts, geom.NRingSlots)
		for slot := 0; slot < geom.NRingSlots; slot++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				det, ring := geom.RingAtIndex(slot)
				slotCounts[slot] = f.filterRing(in, out, det, ring)
			}(slot)
		}
		wg.Wait()
		for _, c := range slotCounts {
			total.add(c)
		}
	} else {
		for slot := 0; slot < geom.NRingSlots; slot++ {
			det, ring := geom.RingAtIndex(slot)
			total.add(f.filterRing(in, out, det, ring))
		}
	}
	return out, total, nil
}

func (f *Filter) filterRing(in, out *EventFrame, det uint16, ring geom.Ring) Counts {
	var counts Counts
	for s := uint16(0); s < geom.NSectors(ring); s++ {
		f.filterSector(in, out, det, ring, s, &counts)
	}
	return counts
}

// filterSector runs the merge state machine over one sector's strips in
// increasing order. Merges only ever combine a strip with its right-hand
// neighbors; the scan direction is the correctness invariant.
func (f *Filter) filterSector(in, out *EventFrame, det uint16, ring geom.Ring, sector uint16, counts *Counts) {
	sink := f.sink()
	nstr := geom.NStrips(ring)
	var st mergeState

	for t := uint16(0); t < nstr; t++ {
		out.SetMultiplicity(det, ring, sector, t, 0)

		mult := f.signalInStrip(in, det, ring, sector, t)
		var multNext, multNextNext float64
		if t < nstr-1 {
			multNext = f.signalInStrip(in, det, ring, sector, t+1)
		}
		if t < nstr-2 {
			multNextNext = f.signalInStrip(in, det, ring, sector, t+2)
		}
		if multNext == InvalidMult {
			multNext = 0
		}
		if multNextNext == InvalidMult {
			multNextNext = 0
		}
		if !f.ThreeStripSharing {
			multNextNext = 0
		}

		eta := in.Eta(det, ring, sector, t)
		phi := in.Phi(det, ring, sector, t) * math.Pi / 180

		if f.RecalculateEta {
			etaOld := eta
			etaCalc := geom.EtaFromStrip(det, ring, sector, t, in.VertexZ)
			eta = etaCalc
			if mult > 0 && mult != InvalidMult {
				corr := geom.CosTheta(etaCalc) / geom.CosTheta(etaOld)
				mult *= corr
				multNext *= corr
				multNextNext *= corr
			}
		}
		if sector == 0 {
			out.SetEta(det, ring, sector, t, eta)
		}

		if mult == InvalidMult && f.InvalidIsEmpty {
			mult = 0
		}

		// Dead-channel information comes either from the input frame
		// or from the configured dead map.
		if mult == InvalidMult || f.isDead(det, ring, sector, t) {
			out.SetMultiplicity(det, ring, sector, t, InvalidMult)
			sink.StripSeen(det, ring, -1)
			mult = InvalidMult
		}

		// No signal or dead strip: flush a pending candidate so a merge
		// never spans the gap, then move on.
		if mult == InvalidMult || mult == 0 {
			if mult == 0 {
				sink.SummedSignal(det, ring, eta, phi, mult)
			}
			if st.kind == stateDeferred && t > 0 {
				out.SetMultiplicity(det, ring, sector, t-1, st.pending)
			}
			st.reset()
			continue
		}

		sink.StripSeen(det, ring, mult)
		if t < nstr-1 {
			sink.NeighborsBefore(det, ring, mult, multNext)
		}

		lowCut := f.Cuts.LowCut(det, ring, eta)
		highCut := f.Cuts.HighCut(det, ring, eta)
		thisValid := mult > lowCut
		nextValid := multNext > lowCut
		thisSmall := mult < highCut
		nextSmall := multNext < highCut

		var etot float64
		switch st.kind {
		case stateDeferred:
			// A two-strip candidate is waiting on this strip's
			// neighbor: absorb it as a triple when it fits, else
			// the candidate was a plain double.
			if f.ThreeStripSharing && nextValid && (nextSmall || st.twoLow) {
				etot = st.pending + multNext
				st.consume()
				counts.Triple++
				sink.Classified(det, ring, t, ClassTriple, etot)
			} else {
				etot = st.pending
				st.reset()
				counts.Double++
				sink.Classified(det, ring, t, ClassDouble, etot)
			}

		case stateConsumed:
			// Already folded into the previous strip's merge; the
			// preset 0 stands.
			st.reset()
			continue

		default:
			if thisValid {
				etot = mult
			}
			if thisValid && nextValid && (thisSmall || nextSmall) {
				if mult > multNext && multNextNext < lowCut {
					// The bigger of the two with nothing
					// real behind it: merge immediately.
					etot = mult + multNext
					st.consume()
					counts.Double++
					sink.Classified(det, ring, t, ClassDouble, etot)
				} else {
					// Might extend to a third strip; defer
					// the decision one step.
					st.deferSum(mult+multNext, thisSmall && nextSmall)
					etot = 0
				}
			} else if etot > 0 {
				counts.Single++
				sink.Classified(det, ring, t, ClassSingle, etot)
			}
		}

		merged := etot
		if !f.CorrectAngles {
			merged = AngleCorrect(merged, eta)
		}

		if t != 0 {
			sink.NeighborsAfter(det, ring, out.Multiplicity(det, ring, sector, t-1), merged)
		}
		sink.MergedSignal(det, ring, mult, merged)
		sink.SummedSignal(det, ring, eta, phi, merged)

		out.SetMultiplicity(det, ring, sector, t, merged)
	}
	// A candidate still deferred after the last strip is dropped.
}
