package sharing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

// InvalidMult marks a strip with no usable reading: a dead channel or a
// reconstruction gap. It is distinct from 0, which is a valid "no signal"
// measurement.
const InvalidMult = 1024.0

// ErrEmptyEvent is returned when an event frame is nil or misshapen. The
// whole event is rejected; no partial output is produced.
var ErrEmptyEvent = errors.New("sharing: empty or malformed event frame")

// StripSignal is one strip's reading with its geometry.
type StripSignal struct {
	// Mult is the multiplicity (energy deposition in MIP units), or
	// InvalidMult.
	Mult float64 `json:"mult"`
	// Eta is the strip's pseudorapidity.
	Eta float64 `json:"eta"`
	// Phi is the strip's azimuthal angle in degrees.
	Phi float64 `json:"phi"`
}

// EventFrame holds one event's per-strip readings across all five ring
// slots, sector-major within each ring. The same shape serves as filter
// input and output.
type EventFrame struct {
	// AngleCorrected records whether the multiplicities already include
	// the incidence-angle correction.
	AngleCorrected bool
	// VertexZ is the event vertex position along the beam line (cm),
	// used only when pseudorapidity is recomputed from geometry.
	VertexZ float64

	rings [geom.NRingSlots][]StripSignal
}

// NewEventFrame allocates a frame with every strip set to InvalidMult, the
// blank state reconstruction starts from.
func NewEventFrame() *EventFrame {
	ev := &EventFrame{}
	for slot := 0; slot < geom.NRingSlots; slot++ {
		_, ring := geom.RingAtIndex(slot)
		n := int(geom.NSectors(ring)) * int(geom.NStrips(ring))
		ev.rings[slot] = make([]StripSignal, n)
		for i := range ev.rings[slot] {
			ev.rings[slot][i].Mult = InvalidMult
		}
	}
	return ev
}

// newOutputFrame allocates a frame with every strip zeroed, the state the
// filter overwrites strip by strip.
func newOutputFrame() *EventFrame {
	ev := NewEventFrame()
	for slot := range ev.rings {
		for i := range ev.rings[slot] {
			ev.rings[slot][i].Mult = 0
		}
	}
	return ev
}

func (ev *EventFrame) index(det uint16, ring geom.Ring, sector, strip uint16) (slot, idx int, ok bool) {
	slot = geom.RingIndex(det, ring)
	if slot < 0 || sector >= geom.NSectors(ring) || strip >= geom.NStrips(ring) {
		return 0, 0, false
	}
	return slot, int(sector)*int(geom.NStrips(ring)) + int(strip), true
}

// Multiplicity returns the reading at an address, or InvalidMult for an
// address outside the topology.
func (ev *EventFrame) Multiplicity(det uint16, ring geom.Ring, sector, strip uint16) float64 {
	slot, idx, ok := ev.index(det, ring, sector, strip)
	if !ok {
		return InvalidMult
	}
	return ev.rings[slot][idx].Mult
}

// Eta returns the pseudorapidity stored at an address, 0 outside the
// topology.
func (ev *EventFrame) Eta(det uint16, ring geom.Ring, sector, strip uint16) float64 {
	slot, idx, ok := ev.index(det, ring, sector, strip)
	if !ok {
		return 0
	}
	return ev.rings[slot][idx].Eta
}

// Phi returns the azimuthal angle (degrees) stored at an address, 0 outside
// the topology.
func (ev *EventFrame) Phi(det uint16, ring geom.Ring, sector, strip uint16) float64 {
	slot, idx, ok := ev.index(det, ring, sector, strip)
	if !ok {
		return 0
	}
	return ev.rings[slot][idx].Phi
}

// SetMultiplicity stores a reading; addresses outside the topology are
// ignored.
func (ev *EventFrame) SetMultiplicity(det uint16, ring geom.Ring, sector, strip uint16, mult float64) {
	if slot, idx, ok := ev.index(det, ring, sector, strip); ok {
		ev.rings[slot][idx].Mult = mult
	}
}

// SetEta stores a pseudorapidity.
func (ev *EventFrame) SetEta(det uint16, ring geom.Ring, sector, strip uint16, eta float64) {
	if slot, idx, ok := ev.index(det, ring, sector, strip); ok {
		ev.rings[slot][idx].Eta = eta
	}
}

// SetPhi stores an azimuthal angle (degrees).
func (ev *EventFrame) SetPhi(det uint16, ring geom.Ring, sector, strip uint16, phi float64) {
	if slot, idx, ok := ev.index(det, ring, sector, strip); ok {
		ev.rings[slot][idx].Phi = phi
	}
}

// valid reports whether every ring slot carries the full strip count.
func (ev *EventFrame) valid() bool {
	if ev == nil {
		return false
	}
	for slot := 0; slot < geom.NRingSlots; slot++ {
		_, ring := geom.RingAtIndex(slot)
		if len(ev.rings[slot]) != int(geom.NSectors(ring))*int(geom.NStrips(ring)) {
			return false
		}
	}
	return true
}

// NStrips returns the total addressable strip count of the frame.
func (ev *EventFrame) NStrips() int {
	n := 0
	for slot := range ev.rings {
		n += len(ev.rings[slot])
	}
	return n
}

// frameJSON is the on-disk shape of an EventFrame, rings keyed by their
// conventional labels.
type frameJSON struct {
	AngleCorrected bool                     `json:"angle_corrected"`
	VertexZ        float64                  `json:"vertex_z"`
	Rings          map[string][]StripSignal `json:"rings"`
}

// MarshalJSON implements json.Marshaler.
func (ev *EventFrame) MarshalJSON() ([]byte, error) {
	out := frameJSON{
		AngleCorrected: ev.AngleCorrected,
		VertexZ:        ev.VertexZ,
		Rings:          make(map[string][]StripSignal, geom.NRingSlots),
	}
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		out.Rings[geom.RingLabel(det, ring)] = ev.rings[slot]
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Every ring must be present with
// its full strip count.
func (ev *EventFrame) UnmarshalJSON(data []byte) error {
	var in frameJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	ev.AngleCorrected = in.AngleCorrected
	ev.VertexZ = in.VertexZ
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		label := geom.RingLabel(det, ring)
		signals, present := in.Rings[label]
		want := int(geom.NSectors(ring)) * int(geom.NStrips(ring))
		if !present || len(signals) != want {
			return fmt.Errorf("sharing: ring %s has %d strips, want %d: %w",
				label, len(signals), want, ErrEmptyEvent)
		}
		ev.rings[slot] = signals
	}
	return nil
}
