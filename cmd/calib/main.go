// Command calib manages the calibration cut database used by sharefilter.
//
// Usage:
//
//	calib -db calib.db init
//	calib -db calib.db import -label "2026 pass 1" cuts.json
//	calib -db calib.db list
//	calib -db calib.db show <set-id>
//	calib -db calib.db migrate -migrations internal/calib/migrations [up|down|version]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/forward-data/multiplicity.report/internal/calib"
	"github.com/forward-data/multiplicity.report/internal/geom"
	"github.com/forward-data/multiplicity.report/internal/version"
)

// cutsDoc is the import/export JSON shape: one bin axis shared by all five
// rings, cuts listed per ring label. Bins left out stay uncalibrated.
type cutsDoc struct {
	EtaBins int                  `json:"eta_bins"`
	EtaMin  float64              `json:"eta_min"`
	EtaMax  float64              `json:"eta_max"`
	Rings   map[string][]binCuts `json:"rings"`
}

type binCuts struct {
	Bin  int     `json:"bin"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func main() {
	dbPath := flag.String("db", "calib.db", "Path to calibration database")
	label := flag.String("label", "", "Label for imported cut set")
	migrationsDir := flag.String("migrations", "internal/calib/migrations", "Path to migration files")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("calib", version.String())
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: calib [-db path] <init|import|list|show|migrate> ...")
		os.Exit(2)
	}

	var err error
	switch cmd := flag.Arg(0); cmd {
	case "init":
		err = runInit(*dbPath)
	case "import":
		err = runImport(*dbPath, *label, flag.Arg(1))
	case "list":
		err = runList(*dbPath)
	case "show":
		err = runShow(*dbPath, flag.Arg(1))
	case "migrate":
		err = runMigrate(*dbPath, *migrationsDir, flag.Arg(1))
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "calib: %v\n", err)
		os.Exit(1)
	}
}

func runInit(dbPath string) error {
	store, err := calib.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	fmt.Printf("initialised %s\n", dbPath)
	return nil
}

func runImport(dbPath, label, file string) error {
	if file == "" {
		return fmt.Errorf("import needs a cuts JSON file")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var doc cutsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}

	table, err := calib.NewTable(doc.EtaBins, doc.EtaMin, doc.EtaMax)
	if err != nil {
		return err
	}
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		for _, bc := range doc.Rings[geom.RingLabel(det, ring)] {
			if err := table.SetBin(det, ring, bc.Bin, bc.Low, bc.High); err != nil {
				return fmt.Errorf("ring %s: %w", geom.RingLabel(det, ring), err)
			}
		}
	}

	store, err := calib.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	setID, err := store.SaveTable(table, label)
	if err != nil {
		return err
	}
	fmt.Println(setID)
	return nil
}

func runList(dbPath string) error {
	store, err := calib.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sets, err := store.ListSets()
	if err != nil {
		return err
	}
	for _, s := range sets {
		created := time.Unix(0, s.CreatedAtNs).UTC().Format(time.RFC3339)
		fmt.Printf("%s  %s  bins=%d eta=[%g,%g]  %s\n",
			s.SetID, created, s.EtaBins, s.EtaMin, s.EtaMax, s.Label)
	}
	return nil
}

func runShow(dbPath, setID string) error {
	if setID == "" {
		return fmt.Errorf("show needs a set id")
	}
	store, err := calib.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	table, err := store.LoadTable(setID)
	if err != nil {
		return err
	}

	doc := cutsDoc{
		EtaBins: table.EtaBins,
		EtaMin:  table.EtaMin,
		EtaMax:  table.EtaMax,
		Rings:   make(map[string][]binCuts, geom.NRingSlots),
	}
	for slot := 0; slot < geom.NRingSlots; slot++ {
		det, ring := geom.RingAtIndex(slot)
		label := geom.RingLabel(det, ring)
		for bin := 0; bin < table.EtaBins; bin++ {
			eta := table.BinCenter(bin)
			low := table.LowCut(det, ring, eta)
			high := table.HighCut(det, ring, eta)
			if low == calib.Missing && high == calib.Missing {
				continue
			}
			doc.Rings[label] = append(doc.Rings[label], binCuts{Bin: bin, Low: low, High: high})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func runMigrate(dbPath, migrationsDir, direction string) error {
	store, err := calib.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch direction {
	case "", "up":
		return store.MigrateUp(migrationsDir)
	case "down":
		return store.MigrateDown(migrationsDir)
	case "version":
		version, dirty, err := store.MigrateVersion(migrationsDir)
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%v\n", version, dirty)
		return nil
	}
	return fmt.Errorf("unknown migrate direction %q", direction)
}
