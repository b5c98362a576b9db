// Package deadmap maintains the set of detector strips whose readings must be
// discarded regardless of content. The set is built once from configuration
// before event processing, finalized, and then queried read-only by the
// sharing filter.
package deadmap

import (
	"github.com/forward-data/multiplicity.report/internal/geom"
	"github.com/forward-data/multiplicity.report/internal/monitoring"
)

const wordBits = 64

// Map is a bitset over packed strip addresses. The zero value is empty and
// ready to use. Not safe for concurrent mutation; concurrent reads are fine
// once configuration is done.
type Map struct {
	words []uint64
	count int
}

// New returns an empty dead-strip map.
func New() *Map { return &Map{} }

// Add marks a single strip dead. Invalid addresses are reported through the
// monitoring logger and ignored; a bad configuration entry never aborts the
// run.
func (m *Map) Add(det uint16, ring geom.Ring, sector, strip uint16) {
	if det < 1 || det > geom.NDetectors {
		monitoring.Logf("deadmap: invalid detector %d", det)
		return
	}
	if geom.RingIndex(det, ring) < 0 {
		monitoring.Logf("deadmap: invalid ring %d%c", det, byte(ring))
		return
	}
	if sector >= geom.NSectors(ring) {
		monitoring.Logf("deadmap: invalid sector %s[%02d]", geom.RingLabel(det, ring), sector)
		return
	}
	if strip >= geom.NStrips(ring) {
		monitoring.Logf("deadmap: invalid strip %s[%02d,%03d]", geom.RingLabel(det, ring), sector, strip)
		return
	}

	id := geom.Pack(det, ring, sector, strip)
	word := int(id / wordBits)
	if word >= len(m.words) {
		grown := make([]uint64, word+1)
		copy(grown, m.words)
		m.words = grown
	}
	bit := uint64(1) << (id % wordBits)
	if m.words[word]&bit == 0 {
		m.words[word] |= bit
		m.count++
	}
}

// AddRegion marks a rectangular sector-by-strip region dead, bounds
// inclusive. Each address is validated individually, so a region that spills
// over a ring edge sheds warnings for the out-of-range part and keeps the
// rest.
func (m *Map) AddRegion(det uint16, ring geom.Ring, sector1, sector2, strip1, strip2 uint16) {
	for s := sector1; s <= sector2; s++ {
		for t := strip1; t <= strip2; t++ {
			m.Add(det, ring, s, t)
		}
	}
}

// IsDead reports whether a strip is marked dead. Out-of-topology addresses
// are never dead.
func (m *Map) IsDead(det uint16, ring geom.Ring, sector, strip uint16) bool {
	if !geom.ValidAddress(det, ring, sector, strip) {
		return false
	}
	id := geom.Pack(det, ring, sector, strip)
	word := int(id / wordBits)
	if word >= len(m.words) {
		return false
	}
	return m.words[word]&(1<<(id%wordBits)) != 0
}

// Len returns the number of strips marked dead.
func (m *Map) Len() int { return m.count }

// Finalize compacts the storage by trimming trailing empty words. Queries
// are valid both before and after; call it once when configuration is done.
func (m *Map) Finalize() {
	last := -1
	for i, w := range m.words {
		if w != 0 {
			last = i
		}
	}
	m.words = m.words[:last+1]
}

// Each calls fn for every dead strip in packed-address order.
func (m *Map) Each(fn func(det uint16, ring geom.Ring, sector, strip uint16)) {
	for wi, w := range m.words {
		if w == 0 {
			continue
		}
		for b := 0; b < wordBits; b++ {
			if w&(1<<b) == 0 {
				continue
			}
			det, ring, sector, strip, ok := geom.Unpack(uint32(wi*wordBits + b))
			if ok {
				fn(det, ring, sector, strip)
			}
		}
	}
}
