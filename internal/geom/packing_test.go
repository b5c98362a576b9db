package geom

import "testing"

// TestPackRoundTrip packs and unpacks every addressable strip and checks the
// mapping is bijective and dense.
func TestPackRoundTrip(t *testing.T) {
	seen := make([]bool, NPackedAddresses)

	for det := uint16(1); det <= NDetectors; det++ {
		for q := uint16(0); q < NRings(det); q++ {
			r := RingAt(q)
			for s := uint16(0); s < NSectors(r); s++ {
				for st := uint16(0); st < NStrips(r); st++ {
					id := Pack(det, r, s, st)
					if id >= NPackedAddresses {
						t.Fatalf("Pack(%d,%c,%d,%d) = %d out of range", det, r, s, st, id)
					}
					if seen[id] {
						t.Fatalf("Pack(%d,%c,%d,%d) = %d collides with an earlier address", det, r, s, st, id)
					}
					seen[id] = true

					d2, r2, s2, st2, ok := Unpack(id)
					if !ok {
						t.Fatalf("Unpack(%d) not ok", id)
					}
					if d2 != det || r2 != r || s2 != s || st2 != st {
						t.Fatalf("Unpack(%d) = (%d,%c,%d,%d), want (%d,%c,%d,%d)",
							id, d2, r2, s2, st2, det, r, s, st)
					}
				}
			}
		}
	}

	for id, used := range seen {
		if !used {
			t.Fatalf("packed address %d never produced; encoding is not dense", id)
		}
	}
}

func TestUnpackOutOfRange(t *testing.T) {
	if _, _, _, _, ok := Unpack(NPackedAddresses); ok {
		t.Errorf("Unpack(%d) should fail", NPackedAddresses)
	}
	if _, _, _, _, ok := Unpack(1 << 30); ok {
		t.Error("Unpack of a huge id should fail")
	}
}

func TestPackBoundaries(t *testing.T) {
	testCases := []struct {
		name   string
		det    uint16
		ring   Ring
		sector uint16
		strip  uint16
		want   uint32
	}{
		{"first_address", 1, Inner, 0, 0, 0},
		{"last_inner_1", 1, Inner, 19, 511, InnerSectors*InnerStrips - 1},
		{"first_of_2I", 2, Inner, 0, 0, InnerSectors * InnerStrips},
		{"last_address", 3, Outer, 39, 255, NPackedAddresses - 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Pack(tc.det, tc.ring, tc.sector, tc.strip); got != tc.want {
				t.Errorf("Pack = %d, want %d", got, tc.want)
			}
		})
	}
}
