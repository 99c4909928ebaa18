// Package skytime converts between calendar time and Modified Julian Date,
// and computes Greenwich Mean Sidereal Time and observer ECI state vectors.
//
// The arithmetic is pure and deterministic: no I/O, no failure mode, ported
// from the teacher's Epoch2Time/Time2Epoch day-counting and from
// obspos_xyz/gmst/dgmst in the original rftrace.c.
package skytime

import (
	"fmt"
	"math"
	"time"
)

// Physical constants (rftrace.c / spec.md 4.1).
const (
	EarthRadiusKm   = 6378.135
	SpeedOfLightKMS = 299792.458
	AUKm            = 149597879.691
	Flattening      = 1.0 / 298.257
)

// mjdEpoch is 1858-11-17T00:00:00Z, MJD 0.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// Vec3 is a 3-component Cartesian vector, km for position, km/s for velocity.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// MJDFromTime converts a calendar time to a Modified Julian Date.
func MJDFromTime(t time.Time) float64 {
	d := t.Sub(mjdEpoch)
	return d.Hours() / 24.0
}

// TimeFromMJD converts a Modified Julian Date to a calendar time (UTC).
func TimeFromMJD(mjd float64) time.Time {
	return mjdEpoch.Add(time.Duration(mjd * 24 * float64(time.Hour)))
}

// modulo returns x modulo y in [0, y), matching the teacher's `modulo()`
// convention in rftrace.c rather than Go's signed fmod.
func modulo(x, y float64) float64 {
	x = math.Mod(x, y)
	if x < 0 {
		x += y
	}
	return x
}

// GMST returns Greenwich Mean Sidereal Time in degrees for the given MJD.
func GMST(mjd float64) float64 {
	t := (mjd - 51544.5) / 36525.0
	g := 280.46061837 + 360.98564736629*(mjd-51544.5) + t*t*(0.000387933-t/38710000)
	return modulo(g, 360.0)
}

// DGMST returns the derivative of GMST in degrees/day.
func DGMST(mjd float64) float64 {
	t := (mjd - 51544.5) / 36525.0
	return 360.98564736629 + t*(0.000387933-t/38710000)
}

// ObserverECI returns the ECI position (km) and velocity (km/s) of a fixed
// ground point given its geodetic longitude/latitude (deg) and altitude (km),
// using the WGS/IAU oblate-Earth correction (spec.md 4.1).
func ObserverECI(mjd, lonDeg, latDeg, altKm float64) (pos, vel Vec3) {
	lat := latDeg * math.Pi / 180.0
	s := math.Sin(lat)
	ff := math.Sqrt(1.0 - Flattening*(2.0-Flattening)*s*s)
	gc := 1.0/ff + altKm/EarthRadiusKm
	gs := (1.0-Flattening)*(1.0-Flattening)/ff + altKm/EarthRadiusKm

	thetaDeg := GMST(mjd) + lonDeg
	theta := thetaDeg * math.Pi / 180.0
	dtheta := DGMST(mjd) * math.Pi / 180.0 / 86400.0

	cosLat, sinLat := math.Cos(lat), s
	cosTheta, sinTheta := math.Cos(theta), math.Sin(theta)

	pos = Vec3{
		X: EarthRadiusKm * gc * cosLat * cosTheta,
		Y: EarthRadiusKm * gc * cosLat * sinTheta,
		Z: EarthRadiusKm * gs * sinLat,
	}
	vel = Vec3{
		X: -EarthRadiusKm * gc * cosLat * sinTheta * dtheta,
		Y: EarthRadiusKm * gc * cosLat * cosTheta * dtheta,
		Z: 0.0,
	}
	return pos, vel
}

// FormatISO renders t as YYYY-MM-DDTHH:MM:SS.mmm, the timestamp format used
// in spectrum headers and log lines (spec.md 3, 4.5, 6).
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000")
}

// FormatISOSeconds renders t truncated to whole seconds, as used for the
// spectrometer's output file prefix. Frequency-catalog append lines use the
// same layout (spec.md 4.4).
func FormatISOSeconds(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}

// ParseISO parses a timestamp in YYYY-MM-DDTHH:MM:SS[.mmm] form. The rffft
// -T flag is parsed separately by cmd/rffft and takes only the .mmm form.
func ParseISO(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("skytime: cannot parse %q as an ISO-8601 timestamp", s)
}
