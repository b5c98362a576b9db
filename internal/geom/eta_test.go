package geom

import (
	"math"
	"testing"
)

func TestThetaFromEtaSignConsistency(t *testing.T) {
	// cos(theta) must keep the same sign on both sides of eta = 0 so that
	// angle corrections do not flip across the zero-crossing.
	for _, eta := range []float64{-3, -1, -0.25, -1e-9, 1e-9, 0.25, 1, 3} {
		c := math.Cos(ThetaFromEta(eta))
		if c <= 0 {
			t.Errorf("cos(theta(%g)) = %g, want > 0", eta, c)
		}
	}
}

func TestThetaFromEtaSymmetry(t *testing.T) {
	for _, eta := range []float64{0.1, 0.7, 1.5, 3.2} {
		cPos := math.Cos(ThetaFromEta(eta))
		cNeg := math.Cos(ThetaFromEta(-eta))
		if math.Abs(cPos-cNeg) > 1e-12 {
			t.Errorf("cos(theta) not symmetric at |eta|=%g: %g vs %g", eta, cPos, cNeg)
		}
		if math.Abs(cPos-CosTheta(eta)) > 1e-12 {
			t.Errorf("CosTheta(%g) = %g disagrees with cos(ThetaFromEta) = %g", eta, CosTheta(eta), cPos)
		}
	}
}

func TestCosThetaRange(t *testing.T) {
	// Physical forward-detector etas are well away from theta = pi/2; the
	// cosine must grow towards 1 with |eta|.
	prev := CosTheta(1.5)
	for _, eta := range []float64{2, 2.5, 3, 4, 5} {
		c := CosTheta(eta)
		if c <= prev {
			t.Errorf("CosTheta not increasing at eta=%g: %g <= %g", eta, c, prev)
		}
		prev = c
	}
	if math.Abs(CosTheta(0)) > 1e-15 {
		// eta = 0 means theta = pi/2 exactly.
		t.Errorf("CosTheta(0) = %g, want 0", CosTheta(0))
	}
}

func TestEtaFromStripSign(t *testing.T) {
	// Detectors 1 and 2 sit at positive z (positive eta); detector 3 at
	// negative z (negative eta).
	testCases := []struct {
		name     string
		det      uint16
		ring     Ring
		positive bool
	}{
		{"det1_inner_forward", 1, Inner, true},
		{"det2_inner_forward", 2, Inner, true},
		{"det2_outer_forward", 2, Outer, true},
		{"det3_inner_backward", 3, Inner, false},
		{"det3_outer_backward", 3, Outer, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			eta := EtaFromStrip(tc.det, tc.ring, 0, 100, 0)
			if tc.positive && eta <= 0 {
				t.Errorf("eta = %g, want > 0", eta)
			}
			if !tc.positive && eta >= 0 {
				t.Errorf("eta = %g, want < 0", eta)
			}
		})
	}
}

func TestEtaFromStripMonotonicInRadius(t *testing.T) {
	// At fixed z, |eta| decreases as the strip radius grows.
	prev := math.Inf(1)
	for _, strip := range []uint16{0, 100, 200, 300, 400, 511} {
		eta := EtaFromStrip(1, Inner, 0, strip, 0)
		if eta >= prev {
			t.Fatalf("eta not decreasing with radius: strip %d gives %g, previous %g", strip, eta, prev)
		}
		prev = eta
	}
}

func TestEtaFromStripVertexShift(t *testing.T) {
	// Moving the vertex towards a positive-z disc increases the opening
	// angle and lowers eta.
	near := EtaFromStrip(1, Inner, 0, 256, 10)
	far := EtaFromStrip(1, Inner, 0, 256, -10)
	if near >= far {
		t.Errorf("vertex shift has no effect: near %g, far %g", near, far)
	}
}

func TestDiscZHybridOffset(t *testing.T) {
	// Sectors pair up on hybrid cards; alternating cards sit closer to the
	// interaction point by half a centimetre.
	z0 := DiscZ(1, Inner, 0)
	z1 := DiscZ(1, Inner, 1)
	z2 := DiscZ(1, Inner, 2)
	if z0 != z1 {
		t.Errorf("sectors 0 and 1 share a hybrid: z %g vs %g", z0, z1)
	}
	if math.Abs(z2-z0-hybridZOffset) > 1e-12 {
		t.Errorf("hybrid offset between sector 0 and 2: got %g, want %g", z2-z0, hybridZOffset)
	}
}
