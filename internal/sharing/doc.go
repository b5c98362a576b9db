// Package sharing merges adjacent strip signals that originate from a single
// particle whose charge deposit spread across one, two, or three neighboring
// strips.
//
// The filter scans each sector's strips in increasing order, classifying
// every signal as a single, double, or triple hit against two eta-dependent
// calibration cuts, and produces a merged event frame where shared deposits
// are summed into one representative strip and the others zeroed. Dead
// channels and reconstruction gaps come out as InvalidMult.
//
// Inputs: an EventFrame from reconstruction, a calib.Provider for the cuts,
// and an optional deadmap.Map. Per-decision observations stream into a Sink
// for diagnostics; the engine itself retains nothing between events.
package sharing
