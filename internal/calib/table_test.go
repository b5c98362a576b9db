package calib

import (
	"testing"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

func TestNewTableValidation(t *testing.T) {
	if _, err := NewTable(0, -4, 6); err == nil {
		t.Error("zero bins should be rejected")
	}
	if _, err := NewTable(10, 6, -4); err == nil {
		t.Error("inverted eta axis should be rejected")
	}
	if _, err := NewTable(10, 2, 2); err == nil {
		t.Error("empty eta axis should be rejected")
	}
}

func TestTableLookup(t *testing.T) {
	tbl, err := NewTable(20, -4, 6)
	if err != nil {
		t.Fatal(err)
	}
	bin := tbl.EtaBin(2.1)
	if err := tbl.SetBin(2, geom.Inner, bin, 0.3, 1.5); err != nil {
		t.Fatal(err)
	}

	if got := tbl.LowCut(2, geom.Inner, 2.1); got != 0.3 {
		t.Errorf("LowCut = %g, want 0.3", got)
	}
	if got := tbl.HighCut(2, geom.Inner, 2.1); got != 1.5 {
		t.Errorf("HighCut = %g, want 1.5", got)
	}

	// Same eta, different ring slot: still missing.
	if got := tbl.LowCut(2, geom.Outer, 2.1); got != Missing {
		t.Errorf("unset ring slot LowCut = %g, want Missing", got)
	}
	// Same ring, different bin: still missing.
	if got := tbl.LowCut(2, geom.Inner, -3.5); got != Missing {
		t.Errorf("unset bin LowCut = %g, want Missing", got)
	}
}

func TestTableLookupMissing(t *testing.T) {
	tbl, err := NewTable(10, -4, 6)
	if err != nil {
		t.Fatal(err)
	}
	testCases := []struct {
		name string
		det  uint16
		ring geom.Ring
		eta  float64
	}{
		{"eta_below_axis", 1, geom.Inner, -4.5},
		{"eta_above_axis", 1, geom.Inner, 6.0},
		{"invalid_ring_slot", 1, geom.Outer, 2.0},
		{"invalid_detector", 5, geom.Inner, 2.0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tbl.LowCut(tc.det, tc.ring, tc.eta); got != Missing {
				t.Errorf("LowCut = %g, want Missing", got)
			}
			if got := tbl.HighCut(tc.det, tc.ring, tc.eta); got != Missing {
				t.Errorf("HighCut = %g, want Missing", got)
			}
		})
	}
	// Missing must be non-positive by construction; the filter relies on it.
	if Missing > 0 {
		t.Fatal("Missing sentinel must be non-positive")
	}
}

func TestEtaBinEdges(t *testing.T) {
	tbl, err := NewTable(10, -4, 6)
	if err != nil {
		t.Fatal(err)
	}
	if got := tbl.EtaBin(-4); got != 0 {
		t.Errorf("EtaBin(min) = %d, want 0", got)
	}
	if got := tbl.EtaBin(5.999); got != 9 {
		t.Errorf("EtaBin(just below max) = %d, want 9", got)
	}
	if got := tbl.EtaBin(6); got != -1 {
		t.Errorf("EtaBin(max) = %d, want -1", got)
	}
	if got := tbl.BinCenter(0); got != -3.5 {
		t.Errorf("BinCenter(0) = %g, want -3.5", got)
	}
}

func TestSetBinValidation(t *testing.T) {
	tbl, err := NewTable(10, -4, 6)
	if err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetBin(1, geom.Outer, 0, 0.1, 1); err == nil {
		t.Error("detector 1 outer ring should be rejected")
	}
	if err := tbl.SetBin(1, geom.Inner, 10, 0.1, 1); err == nil {
		t.Error("out-of-range bin should be rejected")
	}
	if err := tbl.SetBin(1, geom.Inner, -1, 0.1, 1); err == nil {
		t.Error("negative bin should be rejected")
	}
}

func TestFixedCuts(t *testing.T) {
	c := FixedCuts{Low: 0.15, High: 2.0}
	if c.LowCut(3, geom.Outer, -2) != 0.15 || c.HighCut(1, geom.Inner, 4) != 2.0 {
		t.Error("FixedCuts should ignore the bin")
	}
	n := NoCuts{}
	if n.LowCut(1, geom.Inner, 2) != Missing || n.HighCut(1, geom.Inner, 2) != Missing {
		t.Error("NoCuts should always report Missing")
	}
}
