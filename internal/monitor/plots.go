package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

var (
	signalColor = color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 255}
	mergedColor = color.RGBA{R: 0x35, G: 0xb7, B: 0x79, A: 255}
)

// WritePlots renders one PNG per ring slot with data into outputDir: a
// signal distribution histogram and a merged-vs-input scatter. Returns the
// number of rings plotted.
func (h *HistogramSink) WritePlots(outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	plotted := 0
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		a := &h.rings[slot]
		if len(a.signals) == 0 {
			continue
		}
		label := geom.RingLabel(det, ring)
		if err := writeSignalHist(a, label, outputDir); err != nil {
			return plotted, fmt.Errorf("ring %s: %w", label, err)
		}
		if err := writeMergedScatter(a, label, outputDir); err != nil {
			return plotted, fmt.Errorf("ring %s: %w", label, err)
		}
		plotted++
	}
	return plotted, nil
}

func writeSignalHist(a *ringAccum, label, outputDir string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Ring %s - Strip Signal Distribution", label)
	p.X.Label.Text = "Signal (MIP)"
	p.Y.Label.Text = "Strips"

	hist, err := plotter.NewHist(plotter.Values(a.signals), 100)
	if err != nil {
		return err
	}
	hist.FillColor = signalColor
	p.Add(hist)

	file := filepath.Join(outputDir, fmt.Sprintf("ring_%s_signals.png", label))
	if err := p.Save(10*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save signal histogram: %w", err)
	}
	return nil
}

func writeMergedScatter(a *ringAccum, label, outputDir string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Ring %s - Merged vs Input Signal", label)
	p.X.Label.Text = "Input (MIP)"
	p.Y.Label.Text = "Merged (MIP)"

	pts := make(plotter.XYs, 0, len(a.mergedVsInput))
	for _, pr := range a.mergedVsInput {
		pts = append(pts, plotter.XY{X: pr.X, Y: pr.Y})
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = mergedColor
	sc.GlyphStyle.Radius = vg.Points(1)
	p.Add(sc)
	p.Legend.Add("strips", sc)
	p.Legend.Top = true
	p.Legend.Left = false

	file := filepath.Join(outputDir, fmt.Sprintf("ring_%s_merged.png", label))
	if err := p.Save(10*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save merged scatter: %w", err)
	}
	return nil
}
