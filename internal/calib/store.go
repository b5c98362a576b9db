package calib

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

// Store persists cut-table snapshots in SQLite. One snapshot is written per
// calibration period and loaded read-only at run start; the filter never
// touches the database mid-event.
type Store struct {
	*sql.DB
}

// CutSet describes one persisted snapshot.
type CutSet struct {
	SetID       string  `json:"set_id"`
	Label       string  `json:"label,omitempty"`
	EtaBins     int     `json:"eta_bins"`
	EtaMin      float64 `json:"eta_min"`
	EtaMax      float64 `json:"eta_max"`
	CreatedAtNs int64   `json:"created_at_ns"`
}

// OpenStore opens (or creates) the calibration database at path and ensures
// the schema exists. Use ":memory:" for throwaway test databases.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open calibration db: %w", err)
	}
	s := &Store{db}
	if err := s.EnsureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the calibration tables when they are absent. Managed
// deployments run the migrations in internal/calib/migrations instead; the
// two are kept in sync.
func (s *Store) EnsureSchema() error {
	_, err := s.Exec(`
		CREATE TABLE IF NOT EXISTS calib_cut_sets (
			set_id        TEXT PRIMARY KEY,
			label         TEXT,
			eta_bins      INTEGER NOT NULL,
			eta_min       DOUBLE NOT NULL,
			eta_max       DOUBLE NOT NULL,
			created_at_ns BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS calib_cuts (
			set_id     TEXT NOT NULL,
			ring_slot  INTEGER NOT NULL,
			eta_bin    INTEGER NOT NULL,
			low_cut    DOUBLE NOT NULL,
			high_cut   DOUBLE NOT NULL,
			PRIMARY KEY (set_id, ring_slot, eta_bin),
			FOREIGN KEY (set_id) REFERENCES calib_cut_sets(set_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure calibration schema: %w", err)
	}
	return nil
}

// SaveTable stores a snapshot of the table and returns its set ID. Bins that
// hold Missing on both cuts are not written; LoadTable restores them as
// Missing.
func (s *Store) SaveTable(t *Table, label string) (string, error) {
	setID := uuid.New().String()

	tx, err := s.Begin()
	if err != nil {
		return "", fmt.Errorf("save cut set: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO calib_cut_sets (set_id, label, eta_bins, eta_min, eta_max, created_at_ns)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		setID, label, t.EtaBins, t.EtaMin, t.EtaMax, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert cut set: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO calib_cuts (set_id, ring_slot, eta_bin, low_cut, high_cut)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare cut insert: %w", err)
	}
	defer stmt.Close()

	for slot := 0; slot < geom.NRingSlots; slot++ {
		for bin := 0; bin < t.EtaBins; bin++ {
			low, high := t.low[slot][bin], t.high[slot][bin]
			if low == Missing && high == Missing {
				continue
			}
			if _, err := stmt.Exec(setID, slot, bin, low, high); err != nil {
				return "", fmt.Errorf("insert cut row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit cut set: %w", err)
	}
	return setID, nil
}

// LoadTable reconstructs a snapshot by set ID.
func (s *Store) LoadTable(setID string) (*Table, error) {
	var set CutSet
	err := s.QueryRow(
		`SELECT set_id, eta_bins, eta_min, eta_max FROM calib_cut_sets WHERE set_id = ?`,
		setID,
	).Scan(&set.SetID, &set.EtaBins, &set.EtaMin, &set.EtaMax)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cut set not found: %s", setID)
	}
	if err != nil {
		return nil, fmt.Errorf("load cut set: %w", err)
	}

	t, err := NewTable(set.EtaBins, set.EtaMin, set.EtaMax)
	if err != nil {
		return nil, err
	}

	rows, err := s.Query(
		`SELECT ring_slot, eta_bin, low_cut, high_cut FROM calib_cuts WHERE set_id = ?`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("load cuts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot, bin int
		var low, high float64
		if err := rows.Scan(&slot, &bin, &low, &high); err != nil {
			return nil, fmt.Errorf("scan cut row: %w", err)
		}
		if slot < 0 || slot >= geom.NRingSlots || bin < 0 || bin >= t.EtaBins {
			return nil, fmt.Errorf("cut row out of range: slot %d bin %d", slot, bin)
		}
		t.low[slot][bin] = low
		t.high[slot][bin] = high
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cuts: %w", err)
	}
	return t, nil
}

// LatestSetID returns the most recently created snapshot's ID, or an error
// when the store is empty.
func (s *Store) LatestSetID() (string, error) {
	var setID string
	err := s.QueryRow(
		`SELECT set_id FROM calib_cut_sets ORDER BY created_at_ns DESC LIMIT 1`,
	).Scan(&setID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no cut sets in store")
	}
	if err != nil {
		return "", fmt.Errorf("query latest cut set: %w", err)
	}
	return setID, nil
}

// ListSets returns all snapshots, newest first.
func (s *Store) ListSets() ([]CutSet, error) {
	rows, err := s.Query(
		`SELECT set_id, label, eta_bins, eta_min, eta_max, created_at_ns
		 FROM calib_cut_sets ORDER BY created_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list cut sets: %w", err)
	}
	defer rows.Close()

	var sets []CutSet
	for rows.Next() {
		var set CutSet
		var label sql.NullString
		if err := rows.Scan(&set.SetID, &label, &set.EtaBins, &set.EtaMin, &set.EtaMax, &set.CreatedAtNs); err != nil {
			return nil, fmt.Errorf("scan cut set: %w", err)
		}
		if label.Valid {
			set.Label = label.String
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cut sets: %w", err)
	}
	return sets, nil
}
