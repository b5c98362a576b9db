package monitor

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

// maxReportPoints bounds the eta scatter payload so the report stays
// loadable in a browser.
const maxReportPoints = 8000

// WriteReport renders an HTML page with the class counts per ring and the
// merged signal against pseudorapidity.
func (h *HistogramSink) WriteReport(w io.Writer) error {
	stats := h.AllStats()

	labels := make([]string, 0, len(stats))
	singles := make([]opts.BarData, 0, len(stats))
	doubles := make([]opts.BarData, 0, len(stats))
	triples := make([]opts.BarData, 0, len(stats))
	for _, st := range stats {
		labels = append(labels, st.Label)
		singles = append(singles, opts.BarData{Value: st.Counts.Single})
		doubles = append(doubles, opts.BarData{Value: st.Counts.Double})
		triples = append(triples, opts.BarData{Value: st.Counts.Triple})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Strip Merging Report", Theme: "dark", Width: "900px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Merge Classifications", Subtitle: "per ring"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("single", singles).
		AddSeries("double", doubles).
		AddSeries("triple", triples)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Merged Signal vs Pseudorapidity"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "eta", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "signal (MIP)", NameLocation: "middle", NameGap: 30}),
	)

	h.mu.Lock()
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		a := &h.rings[slot]
		if len(a.byEta) == 0 {
			continue
		}
		stride := 1
		if len(a.byEta) > maxReportPoints {
			stride = len(a.byEta)/maxReportPoints + 1
		}
		data := make([]opts.ScatterData, 0, len(a.byEta)/stride+1)
		for i := 0; i < len(a.byEta); i += stride {
			pt := a.byEta[i]
			data = append(data, opts.ScatterData{Value: []interface{}{pt.Eta, pt.Mult}})
		}
		scatter.AddSeries(geom.RingLabel(det, ring), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}
	h.mu.Unlock()

	// One shared axis keeps the per-ring distributions comparable.
	var maxSignal float64
	for _, st := range stats {
		if st.Max > maxSignal {
			maxSignal = st.Max
		}
	}
	const distBins = 50
	dist := charts.NewLine()
	dist.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: "Strip Signal Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "signal (MIP)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "strips"}),
	)
	distAxisSet := false
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		centers, counts := h.Distribution(det, ring, distBins, maxSignal)
		if counts == nil {
			continue
		}
		if !distAxisSet {
			axis := make([]string, len(centers))
			for i, c := range centers {
				axis[i] = fmt.Sprintf("%.2f", c)
			}
			dist.SetXAxis(axis)
			distAxisSet = true
		}
		series := make([]opts.LineData, len(counts))
		for i, c := range counts {
			series[i] = opts.LineData{Value: c}
		}
		dist.AddSeries(geom.RingLabel(det, ring), series)
	}

	page := components.NewPage()
	page.PageTitle = "Strip Merging Report"
	page.AddCharts(bar, dist, scatter)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Handler serves the HTML report. Debugging-only endpoint, no auth.
func (h *HistogramSink) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.WriteReport(w); err != nil {
			http.Error(w, fmt.Sprintf("failed to render report: %v", err), http.StatusInternalServerError)
		}
	}
}
