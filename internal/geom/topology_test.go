package geom

import "testing"

func TestRingIndexRoundTrip(t *testing.T) {
	for idx := 0; idx < NRingSlots; idx++ {
		det, r := RingAtIndex(idx)
		if got := RingIndex(det, r); got != idx {
			t.Errorf("RingIndex(%d,%c) = %d, want %d", det, r, got, idx)
		}
	}
}

func TestRingIndexInvalid(t *testing.T) {
	testCases := []struct {
		name string
		det  uint16
		ring Ring
	}{
		{"detector_1_has_no_outer_ring", 1, Outer},
		{"detector_0", 0, Inner},
		{"detector_4", 4, Inner},
		{"bad_ring_byte", 2, Ring('X')},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RingIndex(tc.det, tc.ring); got != -1 {
				t.Errorf("RingIndex(%d,%c) = %d, want -1", tc.det, tc.ring, got)
			}
		})
	}
}

func TestValidAddress(t *testing.T) {
	testCases := []struct {
		name   string
		det    uint16
		ring   Ring
		sector uint16
		strip  uint16
		want   bool
	}{
		{"inner_bounds_ok", 2, Inner, 19, 511, true},
		{"outer_bounds_ok", 3, Outer, 39, 255, true},
		{"inner_sector_overflow", 2, Inner, 20, 0, false},
		{"inner_strip_overflow", 2, Inner, 0, 512, false},
		{"outer_sector_overflow", 2, Outer, 40, 0, false},
		{"outer_strip_overflow", 2, Outer, 0, 256, false},
		{"no_outer_on_detector_1", 1, Outer, 0, 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidAddress(tc.det, tc.ring, tc.sector, tc.strip); got != tc.want {
				t.Errorf("ValidAddress = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRingGeometryCounts(t *testing.T) {
	if NSectors(Inner) != 20 || NStrips(Inner) != 512 {
		t.Errorf("inner ring geometry: got %dx%d, want 20x512", NSectors(Inner), NStrips(Inner))
	}
	if NSectors(Outer) != 40 || NStrips(Outer) != 256 {
		t.Errorf("outer ring geometry: got %dx%d, want 40x256", NSectors(Outer), NStrips(Outer))
	}
	if NRings(1) != 1 || NRings(2) != 2 || NRings(3) != 2 {
		t.Error("ring multiplicity per detector is wrong")
	}
}

func TestRingLabel(t *testing.T) {
	if got := RingLabel(2, Outer); got != "2O" {
		t.Errorf("RingLabel(2,O) = %q, want 2O", got)
	}
	if got := RingLabel(1, Outer); got != "??" {
		t.Errorf("RingLabel on invalid slot = %q, want ??", got)
	}
}
