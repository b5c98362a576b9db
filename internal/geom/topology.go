// Package geom describes the fixed geometry of the forward strip detector:
// three sub-detectors of one or two concentric rings, each ring segmented
// into sectors of silicon strips. It owns strip addressing, the bijective
// packed-index encoding used by sparse per-strip sets, and the
// pseudorapidity geometry of each strip.
package geom

// Ring identifies an inner or outer detector ring.
type Ring byte

const (
	// Inner rings have 20 sectors of 512 strips.
	Inner Ring = 'I'
	// Outer rings have 40 sectors of 256 strips.
	Outer Ring = 'O'
)

// Detector counts. Detector 1 has an inner ring only; detectors 2 and 3
// carry both an inner and an outer ring.
const (
	NDetectors = 3
	// NRingSlots is the number of distinct (detector, ring) combinations:
	// 1I, 2I, 2O, 3I, 3O.
	NRingSlots = 5

	InnerSectors = 20
	InnerStrips  = 512
	OuterSectors = 40
	OuterStrips  = 256
)

// Valid reports whether r is one of the two known ring identifiers.
func (r Ring) Valid() bool { return r == Inner || r == Outer }

func (r Ring) String() string {
	switch r {
	case Inner:
		return "inner"
	case Outer:
		return "outer"
	}
	return "invalid"
}

// NSectors returns the sector count of a ring.
func NSectors(r Ring) uint16 {
	if r == Inner {
		return InnerSectors
	}
	return OuterSectors
}

// NStrips returns the strip count per sector of a ring.
func NStrips(r Ring) uint16 {
	if r == Inner {
		return InnerStrips
	}
	return OuterStrips
}

// NRings returns how many rings a detector has.
func NRings(det uint16) uint16 {
	if det == 1 {
		return 1
	}
	return 2
}

// RingAt maps a detector-local ring ordinal (0 = inner, 1 = outer) to its
// identifier. Mirrors the scan order used by the sharing filter.
func RingAt(q uint16) Ring {
	if q == 0 {
		return Inner
	}
	return Outer
}

// RingIndex returns the dense slot index of a (detector, ring) pair in the
// order 1I, 2I, 2O, 3I, 3O, or -1 for an address outside the topology.
func RingIndex(det uint16, r Ring) int {
	if !r.Valid() {
		return -1
	}
	switch det {
	case 1:
		if r == Outer {
			return -1
		}
		return 0
	case 2:
		if r == Inner {
			return 1
		}
		return 2
	case 3:
		if r == Inner {
			return 3
		}
		return 4
	}
	return -1
}

// RingAtIndex is the inverse of RingIndex.
func RingAtIndex(idx int) (det uint16, r Ring) {
	switch idx {
	case 0:
		return 1, Inner
	case 1:
		return 2, Inner
	case 2:
		return 2, Outer
	case 3:
		return 3, Inner
	case 4:
		return 3, Outer
	}
	return 0, 0
}

// RingLabel returns the conventional short name of a ring slot, e.g. "2O".
func RingLabel(det uint16, r Ring) string {
	if RingIndex(det, r) < 0 {
		return "??"
	}
	return string([]byte{'0' + byte(det), byte(r)})
}

// ValidAddress reports whether (det, ring, sector, strip) lies inside the
// detector topology.
func ValidAddress(det uint16, r Ring, sector, strip uint16) bool {
	if RingIndex(det, r) < 0 {
		return false
	}
	return sector < NSectors(r) && strip < NStrips(r)
}
