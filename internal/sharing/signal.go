package sharing

import (
	"errors"
	"math"

	"github.com/forward-data/multiplicity.report/internal/geom"
)

// ErrDegenerateAngle is returned when an angle de-correction would divide by
// a vanishing cosine. Physical pseudorapidities never reach theta = pi/2,
// but a strip that does is mapped to InvalidMult instead of propagating a
// non-finite value.
var ErrDegenerateAngle = errors.New("sharing: angle correction cosine vanishes")

// minCosTheta is the smallest cosine magnitude DeAngleCorrect divides by.
const minCosTheta = 1e-9

// AngleCorrect scales a deposit by the cosine of the incidence angle,
// normalizing the path-length-dependent energy loss.
func AngleCorrect(mult, eta float64) float64 {
	return mult * math.Cos(geom.ThetaFromEta(eta))
}

// DeAngleCorrect removes a previously applied angle correction.
func DeAngleCorrect(mult, eta float64) (float64, error) {
	c := math.Cos(geom.ThetaFromEta(eta))
	if math.Abs(c) < minCosTheta {
		return 0, ErrDegenerateAngle
	}
	return mult / c, nil
}

// Normalize reconciles a raw reading's correction state with the wanted
// state. Invalid and zero readings pass through untouched, as do readings
// already in the wanted state.
func Normalize(raw float64, inputCorrected, wantCorrected bool, eta float64) (float64, error) {
	if raw == InvalidMult || raw == 0 || inputCorrected == wantCorrected {
		return raw, nil
	}
	if wantCorrected {
		return AngleCorrect(raw, eta), nil
	}
	return DeAngleCorrect(raw, eta)
}

// signalInStrip returns the working multiplicity for a strip, normalized to
// the filter's configured correction state. A degenerate angle maps the
// strip to InvalidMult.
func (f *Filter) signalInStrip(ev *EventFrame, det uint16, ring geom.Ring, sector, strip uint16) float64 {
	raw := ev.Multiplicity(det, ring, sector, strip)
	mult, err := Normalize(raw, ev.AngleCorrected, f.CorrectAngles, ev.Eta(det, ring, sector, strip))
	if err != nil {
		return InvalidMult
	}
	return mult
}
