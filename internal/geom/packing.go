package geom

// Packed-address encoding. Every valid strip address maps to a unique integer
// in [0, NPackedAddresses); the mapping is dense so a bitset over packed
// addresses wastes no space. Ring slots are laid out in RingIndex order, each
// slot holding sectors*strips consecutive addresses.

// NPackedAddresses is one past the largest packed address:
// 1 inner ring of 20x512 plus two detectors with 20x512 + 40x256 each.
const NPackedAddresses = InnerSectors*InnerStrips + 2*(InnerSectors*InnerStrips+OuterSectors*OuterStrips)

// ringBase holds the first packed address of each ring slot.
var ringBase = [NRingSlots]uint32{
	0,
	InnerSectors * InnerStrips,
	2 * InnerSectors * InnerStrips,
	2*InnerSectors*InnerStrips + OuterSectors*OuterStrips,
	3*InnerSectors*InnerStrips + OuterSectors*OuterStrips,
}

// Pack encodes a strip address as a dense non-negative integer. The address
// must be valid; use ValidAddress first for untrusted input.
func Pack(det uint16, r Ring, sector, strip uint16) uint32 {
	idx := RingIndex(det, r)
	return ringBase[idx] + uint32(sector)*uint32(NStrips(r)) + uint32(strip)
}

// Unpack is the inverse of Pack. ok is false when id is out of range.
func Unpack(id uint32) (det uint16, r Ring, sector, strip uint16, ok bool) {
	if id >= NPackedAddresses {
		return 0, 0, 0, 0, false
	}
	for idx := NRingSlots - 1; idx >= 0; idx-- {
		if id < ringBase[idx] {
			continue
		}
		det, r = RingAtIndex(idx)
		rel := id - ringBase[idx]
		n := uint32(NStrips(r))
		return det, r, uint16(rel / n), uint16(rel % n), true
	}
	return 0, 0, 0, 0, false
}
