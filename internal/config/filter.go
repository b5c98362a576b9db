// Package config loads the JSON run configuration for the sharing filter.
// All fields are pointers so a partial file only overrides what it names;
// the Get* methods supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forward-data/multiplicity.report/internal/calib"
	"github.com/forward-data/multiplicity.report/internal/deadmap"
	"github.com/forward-data/multiplicity.report/internal/geom"
	"github.com/forward-data/multiplicity.report/internal/sharing"
)

// DeadStrip names one channel to exclude.
type DeadStrip struct {
	Det    uint16 `json:"det"`
	Ring   string `json:"ring"`
	Sector uint16 `json:"sector"`
	Strip  uint16 `json:"strip"`
}

// DeadRegion names an inclusive sector and strip range to exclude.
type DeadRegion struct {
	Det     uint16 `json:"det"`
	Ring    string `json:"ring"`
	Sector1 uint16 `json:"sector1"`
	Sector2 uint16 `json:"sector2"`
	Strip1  uint16 `json:"strip1"`
	Strip2  uint16 `json:"strip2"`
}

// FilterConfig is the root run configuration. The schema is shared by the
// startup file and runtime updates, so partial documents are safe.
type FilterConfig struct {
	// Merging params
	CorrectAngles     *bool `json:"correct_angles,omitempty"`
	ThreeStripSharing *bool `json:"three_strip_sharing,omitempty"`
	InvalidIsEmpty    *bool `json:"invalid_is_empty,omitempty"`
	RecalculateEta    *bool `json:"recalculate_eta,omitempty"`
	Parallel          *bool `json:"parallel,omitempty"`

	// Fixed cuts; used when both are set, otherwise the calibration
	// store supplies an eta-dependent table.
	LowCut  *float64 `json:"low_cut,omitempty"`
	HighCut *float64 `json:"high_cut,omitempty"`

	// Calibration store params
	CalibDB *string `json:"calib_db,omitempty"`
	CutSet  *string `json:"cut_set,omitempty"` // set id; empty means latest

	// Dead channel params
	DeadStrips  []DeadStrip  `json:"dead_strips,omitempty"`
	DeadRegions []DeadRegion `json:"dead_regions,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// DefaultFilterConfig returns the default run configuration with every field
// populated.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		CorrectAngles:     ptrBool(false),
		ThreeStripSharing: ptrBool(true),
		InvalidIsEmpty:    ptrBool(false),
		RecalculateEta:    ptrBool(false),
		Parallel:          ptrBool(false),
		LowCut:            ptrFloat64(0.3),
		HighCut:           ptrFloat64(1.5),
		CalibDB:           ptrString(""),
		CutSet:            ptrString(""),
	}
}

// Load reads a FilterConfig from a JSON file. Fields omitted from the file
// keep their defaults through the Get* methods.
func Load(path string) (*FilterConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &FilterConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseRing(s string) (geom.Ring, error) {
	if len(s) == 1 {
		r := geom.Ring(s[0])
		if r.Valid() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("ring must be \"I\" or \"O\", got %q", s)
}

// Validate checks that the configuration values are valid.
func (c *FilterConfig) Validate() error {
	if c.LowCut != nil && c.HighCut != nil && *c.LowCut >= *c.HighCut {
		return fmt.Errorf("low_cut %f must be below high_cut %f", *c.LowCut, *c.HighCut)
	}
	if (c.LowCut == nil) != (c.HighCut == nil) {
		return fmt.Errorf("low_cut and high_cut must be set together")
	}
	for _, d := range c.DeadStrips {
		r, err := parseRing(d.Ring)
		if err != nil {
			return fmt.Errorf("dead strip: %w", err)
		}
		if !geom.ValidAddress(d.Det, r, d.Sector, d.Strip) {
			return fmt.Errorf("dead strip %d%s[%d,%d] outside topology", d.Det, d.Ring, d.Sector, d.Strip)
		}
	}
	for _, d := range c.DeadRegions {
		r, err := parseRing(d.Ring)
		if err != nil {
			return fmt.Errorf("dead region: %w", err)
		}
		if !geom.ValidAddress(d.Det, r, d.Sector2, d.Strip2) || d.Sector1 > d.Sector2 || d.Strip1 > d.Strip2 {
			return fmt.Errorf("dead region %d%s[%d-%d,%d-%d] outside topology", d.Det, d.Ring, d.Sector1, d.Sector2, d.Strip1, d.Strip2)
		}
	}
	return nil
}

func (c *FilterConfig) GetCorrectAngles() bool {
	if c.CorrectAngles != nil {
		return *c.CorrectAngles
	}
	return false
}

func (c *FilterConfig) GetThreeStripSharing() bool {
	if c.ThreeStripSharing != nil {
		return *c.ThreeStripSharing
	}
	return true
}

func (c *FilterConfig) GetInvalidIsEmpty() bool {
	if c.InvalidIsEmpty != nil {
		return *c.InvalidIsEmpty
	}
	return false
}

func (c *FilterConfig) GetRecalculateEta() bool {
	if c.RecalculateEta != nil {
		return *c.RecalculateEta
	}
	return false
}

func (c *FilterConfig) GetParallel() bool {
	if c.Parallel != nil {
		return *c.Parallel
	}
	return false
}

func (c *FilterConfig) GetCalibDB() string {
	if c.CalibDB != nil {
		return *c.CalibDB
	}
	return ""
}

func (c *FilterConfig) GetCutSet() string {
	if c.CutSet != nil {
		return *c.CutSet
	}
	return ""
}

// Cuts builds the threshold provider: fixed values when both cuts are
// configured, otherwise a table loaded from the calibration store. With no
// cuts and no store every threshold reads as missing.
func (c *FilterConfig) Cuts() (calib.Provider, error) {
	if c.LowCut != nil && c.HighCut != nil {
		return calib.FixedCuts{Low: *c.LowCut, High: *c.HighCut}, nil
	}
	dbPath := c.GetCalibDB()
	if dbPath == "" {
		return calib.NoCuts{}, nil
	}

	store, err := calib.OpenStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open calibration store: %w", err)
	}
	defer store.Close()

	setID := c.GetCutSet()
	if setID == "" {
		setID, err = store.LatestSetID()
		if err != nil {
			return nil, fmt.Errorf("resolve latest cut set: %w", err)
		}
	}
	table, err := store.LoadTable(setID)
	if err != nil {
		return nil, fmt.Errorf("load cut set %s: %w", setID, err)
	}
	return table, nil
}

// DeadMap builds the dead channel map from the configured strips and
// regions.
func (c *FilterConfig) DeadMap() (*deadmap.Map, error) {
	m := deadmap.New()
	for _, d := range c.DeadStrips {
		r, err := parseRing(d.Ring)
		if err != nil {
			return nil, err
		}
		m.Add(d.Det, r, d.Sector, d.Strip)
	}
	for _, d := range c.DeadRegions {
		r, err := parseRing(d.Ring)
		if err != nil {
			return nil, err
		}
		m.AddRegion(d.Det, r, d.Sector1, d.Sector2, d.Strip1, d.Strip2)
	}
	m.Finalize()
	return m, nil
}

// Build assembles a filter from the configuration.
func (c *FilterConfig) Build() (*sharing.Filter, error) {
	cuts, err := c.Cuts()
	if err != nil {
		return nil, err
	}
	dead, err := c.DeadMap()
	if err != nil {
		return nil, err
	}
	f := sharing.NewFilter(cuts)
	f.Dead = dead
	f.CorrectAngles = c.GetCorrectAngles()
	f.ThreeStripSharing = c.GetThreeStripSharing()
	f.InvalidIsEmpty = c.GetInvalidIsEmpty()
	f.RecalculateEta = c.GetRecalculateEta()
	f.Parallel = c.GetParallel()
	return f, nil
}
