package geom

import "math"

// Radial extent of the strip rings and z positions of the detector discs, in
// centimetres. The beam line is z; inner and outer rings sit at different z
// on detectors 2 and 3.
const (
	innerMinRadius = 4.5213
	innerMaxRadius = 17.2
	outerMinRadius = 15.4
	outerMaxRadius = 28.0

	det1InnerZ = 320.266
	det2InnerZ = 83.666
	det2OuterZ = 74.966
	det3InnerZ = -62.216
	det3OuterZ = -75.15

	// Every second hybrid card sits half a centimetre closer to the
	// interaction point.
	hybridZOffset = 0.5
)

// ThetaFromEta converts pseudorapidity to the polar angle theta, shifted by
// -pi for negative eta so that cos(theta) keeps a consistent sign across the
// eta zero-crossing.
func ThetaFromEta(eta float64) float64 {
	theta := 2 * math.Atan(math.Exp(-eta))
	if eta < 0 {
		theta -= math.Pi
	}
	return theta
}

// CosTheta returns the cosine of the incidence angle for a given
// pseudorapidity, evaluated on the magnitude of eta. Used when rescaling
// signals after a vertex-corrected eta recomputation.
func CosTheta(eta float64) float64 {
	return math.Cos(2 * math.Atan(math.Exp(-math.Abs(eta))))
}

// StripRadius returns the radial position (cm) of a strip within its ring.
func StripRadius(r Ring, strip uint16) float64 {
	minR, maxR := innerMinRadius, innerMaxRadius
	if r == Outer {
		minR, maxR = outerMinRadius, outerMaxRadius
	}
	segment := (maxR - minR) / float64(NStrips(r))
	return minR + segment*float64(strip)
}

// DiscZ returns the nominal z position (cm) of a ring's disc for the strip's
// sector, including the alternating hybrid-card offset.
func DiscZ(det uint16, r Ring, sector uint16) float64 {
	var z float64
	switch det {
	case 1:
		z = det1InnerZ
	case 2:
		if r == Inner {
			z = det2InnerZ
		} else {
			z = det2OuterZ
		}
	case 3:
		if r == Inner {
			z = det3InnerZ
		} else {
			z = det3OuterZ
		}
	}
	hybrid := sector / 2
	if hybrid%2 == 0 {
		z -= hybridZOffset
	}
	return z
}

// EtaFromStrip recomputes the pseudorapidity of a strip as seen from an event
// vertex displaced by vertexZ (cm) along the beam line. Used when the
// recompute-eta option is enabled instead of trusting the eta stored with the
// event.
func EtaFromStrip(det uint16, r Ring, sector, strip uint16, vertexZ float64) float64 {
	rad := StripRadius(r, strip)
	z := DiscZ(det, r, sector)
	theta := math.Atan2(rad, z-vertexZ)
	return -math.Log(math.Tan(theta / 2))
}
