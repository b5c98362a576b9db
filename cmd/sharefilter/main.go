// Command sharefilter reads strip-detector event frames as a JSON stream,
// merges shared signals, and writes the filtered frames back out. It can
// also emit diagnostic plots and an HTML report of the run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/forward-data/multiplicity.report/internal/config"
	"github.com/forward-data/multiplicity.report/internal/monitor"
	"github.com/forward-data/multiplicity.report/internal/monitoring"
	"github.com/forward-data/multiplicity.report/internal/sharing"
	"github.com/forward-data/multiplicity.report/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to filter config JSON (optional; defaults apply)")
	inPath := flag.String("in", "-", "Input event stream (JSON frames; - for stdin)")
	outPath := flag.String("out", "-", "Output event stream (- for stdout)")
	plotsDir := flag.String("plots", "", "Directory for diagnostic PNG plots (optional)")
	reportPath := flag.String("report", "", "Path for HTML diagnostics report (optional)")
	listen := flag.String("listen", "", "Serve the diagnostics report over HTTP after processing (e.g. :8081)")
	statsOut := flag.Bool("stats", false, "Print per-ring statistics as JSON to stderr")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("sharefilter", version.String())
		return
	}

	cfg := config.DefaultFilterConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	filter, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "filter setup error: %v\n", err)
		os.Exit(1)
	}

	diag := monitor.NewHistogramSink()
	wantDiag := *plotsDir != "" || *reportPath != "" || *listen != "" || *statsOut
	if wantDiag {
		filter.Diag = diag
	}

	in := os.Stdin
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	out := os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	events, total, err := run(filter, in, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "processing error: %v\n", err)
		os.Exit(1)
	}
	monitoring.Logf("sharefilter: %d events, %d single, %d double, %d triple",
		events, total.Single, total.Double, total.Triple)

	if *statsOut {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		if err := enc.Encode(diag.AllStats()); err != nil {
			fmt.Fprintf(os.Stderr, "stats encode error: %v\n", err)
			os.Exit(1)
		}
	}
	if *plotsDir != "" {
		n, err := diag.WritePlots(*plotsDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "plot error: %v\n", err)
			os.Exit(1)
		}
		monitoring.Logf("sharefilter: wrote plots for %d rings to %s", n, *plotsDir)
	}
	if *reportPath != "" {
		f, err := os.Create(*reportPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create report: %v\n", err)
			os.Exit(1)
		}
		if err := diag.WriteReport(f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "report error: %v\n", err)
			os.Exit(1)
		}
		f.Close()
	}
	if *listen != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/report", diag.Handler())
		monitoring.Logf("sharefilter: report at http://%s/debug/report", *listen)
		if err := http.ListenAndServe(*listen, mux); err != nil {
			fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
			os.Exit(1)
		}
	}
}

// run streams frames from in through the filter to out and returns the event
// count with the summed classifications.
func run(filter *sharing.Filter, in io.Reader, out io.Writer) (int, sharing.Counts, error) {
	dec := json.NewDecoder(in)
	enc := json.NewEncoder(out)

	events := 0
	var total sharing.Counts
	for {
		frame := sharing.NewEventFrame()
		if err := dec.Decode(frame); err == io.EOF {
			break
		} else if err != nil {
			return events, total, fmt.Errorf("event %d: %w", events+1, err)
		}

		merged, counts, err := filter.Process(frame)
		if err != nil {
			return events, total, fmt.Errorf("event %d: %w", events+1, err)
		}
		if err := enc.Encode(merged); err != nil {
			return events, total, fmt.Errorf("event %d: write: %w", events+1, err)
		}

		events++
		total.Single += counts.Single
		total.Double += counts.Double
		total.Triple += counts.Triple
	}
	return events, total, nil
}
