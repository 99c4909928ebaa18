// Package geodesy provides the topocentric transforms used by the trace
// synthesizer and identifier: equatorial-to-horizontal conversion, slant
// range-rate and zenith angle. Split out of the per-point loops in the
// original rftrace.c (identify_trace/compute_trace) into small testable
// units, in the teacher's own style of factoring small geometric helpers
// out of common.go (GeoDist, SatAzel).
package geodesy

import (
	"math"

	"github.com/lezbar/strf/internal/skytime"
)

func modulo(x, y float64) float64 {
	x = math.Mod(x, y)
	if x < 0 {
		x += y
	}
	return x
}

// EquatorialToHorizontal converts equatorial (ra, de) at the given MJD into
// horizontal (azimuth, altitude) as seen from (lonDeg, latDeg), all degrees.
func EquatorialToHorizontal(mjd, raDeg, deDeg, lonDeg, latDeg float64) (aziDeg, altDeg float64) {
	const d2r = math.Pi / 180.0
	const r2d = 180.0 / math.Pi

	h := skytime.GMST(mjd) + lonDeg - raDeg
	hr := h * d2r
	lat := latDeg * d2r
	de := deDeg * d2r

	azi := modulo(math.Atan2(math.Sin(hr), math.Cos(hr)*math.Sin(lat)-math.Tan(de)*math.Cos(lat))*r2d, 360.0)
	alt := math.Asin(math.Sin(lat)*math.Sin(de)+math.Cos(lat)*math.Cos(de)*math.Cos(hr)) * r2d
	return azi, alt
}

// RangeRate returns the slant range (km) and range-rate (km/s, positive
// receding) between a moving target and an observer, given both position and
// velocity vectors.
func RangeRate(targetPos, targetVel, obsPos, obsVel skytime.Vec3) (rangeKm, rangeRateKMS float64) {
	dp := targetPos.Sub(obsPos)
	dv := targetVel.Sub(obsVel)
	r := dp.Norm()
	if r == 0 {
		return 0, 0
	}
	return r, dv.Dot(dp) / r
}

// ZenithAngleDeg returns the zenith angle of the target as seen from the
// observer, given the observer position, the observer->target delta vector
// and the precomputed range (km).
func ZenithAngleDeg(obsPos, delta skytime.Vec3, rangeKm float64) float64 {
	if rangeKm == 0 {
		return 0
	}
	cosZa := obsPos.Dot(delta) / (rangeKm * skytime.EarthRadiusKm)
	if cosZa > 1 {
		cosZa = 1
	} else if cosZa < -1 {
		cosZa = -1
	}
	return math.Acos(cosZa) * 180.0 / math.Pi
}

// RaDec returns the right ascension and declination (degrees) of a delta
// vector (target - observer), as used for the midpoint display direction and
// the bistatic illuminator beam-pointing check.
func RaDec(delta skytime.Vec3, rangeKm float64) (raDeg, deDeg float64) {
	ra := modulo(math.Atan2(delta.Y, delta.X)*180.0/math.Pi, 360.0)
	de := math.Asin(delta.Z/rangeKm) * 180.0 / math.Pi
	return ra, de
}
