package calib

import (
	"fmt"
	"math"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

// Table holds eta-binned low and high cuts for every ring slot on a shared
// eta axis. Bins with no calibration hold Missing. A Table is an immutable
// snapshot once filled; the filter reads it without locking.
type Table struct {
	EtaBins int
	EtaMin  float64
	EtaMax  float64

	// low and high are indexed [ringSlot][etaBin].
	low  [geom.NRingSlots][]float64
	high [geom.NRingSlots][]float64
}

// NewTable allocates a table with every bin set to Missing.
func NewTable(etaBins int, etaMin, etaMax float64) (*Table, error) {
	if etaBins <= 0 {
		return nil, fmt.Errorf("calib: eta bins must be positive, got %d", etaBins)
	}
	if !(etaMax > etaMin) {
		return nil, fmt.Errorf("calib: bad eta axis [%g, %g]", etaMin, etaMax)
	}
	t := &Table{EtaBins: etaBins, EtaMin: etaMin, EtaMax: etaMax}
	for slot := 0; slot < geom.NRingSlots; slot++ {
		t.low[slot] = make([]float64, etaBins)
		t.high[slot] = make([]float64, etaBins)
		for b := 0; b < etaBins; b++ {
			t.low[slot][b] = Missing
			t.high[slot][b] = Missing
		}
	}
	return t, nil
}

// EtaBin returns the bin index for eta, or -1 when eta falls off the axis.
func (t *Table) EtaBin(eta float64) int {
	if math.IsNaN(eta) || eta < t.EtaMin || eta >= t.EtaMax {
		return -1
	}
	bin := int(float64(t.EtaBins) * (eta - t.EtaMin) / (t.EtaMax - t.EtaMin))
	if bin >= t.EtaBins {
		bin = t.EtaBins - 1
	}
	return bin
}

// BinCenter returns the eta at the centre of a bin.
func (t *Table) BinCenter(bin int) float64 {
	width := (t.EtaMax - t.EtaMin) / float64(t.EtaBins)
	return t.EtaMin + (float64(bin)+0.5)*width
}

// SetBin stores both cuts for one (ring slot, eta bin).
func (t *Table) SetBin(det uint16, ring geom.Ring, bin int, low, high float64) error {
	slot := geom.RingIndex(det, ring)
	if slot < 0 {
		return fmt.Errorf("calib: no ring slot for detector %d ring %c", det, ring)
	}
	if bin < 0 || bin >= t.EtaBins {
		return fmt.Errorf("calib: eta bin %d out of range [0,%d)", bin, t.EtaBins)
	}
	t.low[slot][bin] = low
	t.high[slot][bin] = high
	return nil
}

// LowCut implements Provider.
func (t *Table) LowCut(det uint16, ring geom.Ring, eta float64) float64 {
	return t.lookup(t.low[:], det, ring, eta)
}

// HighCut implements Provider.
func (t *Table) HighCut(det uint16, ring geom.Ring, eta float64) float64 {
	return t.lookup(t.high[:], det, ring, eta)
}

func (t *Table) lookup(cuts [][]float64, det uint16, ring geom.Ring, eta float64) float64 {
	slot := geom.RingIndex(det, ring)
	if slot < 0 {
		return Missing
	}
	bin := t.EtaBin(eta)
	if bin < 0 {
		return Missing
	}
	return cuts[slot][bin]
}

var _ Provider = (*Table)(nil)
var _ Provider = FixedCuts{}
var _ Provider = NoCuts{}
