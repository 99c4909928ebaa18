// Package sgp4 implements the NORAD SGP4 analytic propagator (Spacetrack
// Report #3) used to advance a two-line element set to an epoch and obtain
// an ECI position/velocity. Ported from the teacher's tle.go
// (SGP4_STR3/Decode_line1/Decode_line2/checksum), which is itself a Go port
// of RTKLIB's tle.c. This is the "propagator... assumed available with a
// well-defined interface" that spec.md section 1 treats as an external
// collaborator; it lives here because the teacher corpus already supplies
// one and the task calls for reusing pack code over hand-waving an import
// that does not exist.
//
// The deep-space (SDP4) branch is not implemented, matching the teacher: STR3
// is the near-earth model only.
package sgp4

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lezbar/strf/internal/skytime"
)

const (
	de2ra  = 0.174532925e-1
	e6a    = 1.e-6
	qo     = 120.0
	so     = 78.0
	tothrd = 0.66666667
	twopi  = 6.2831853
	xj2    = 1.082616e-3
	xj3    = -0.253881e-5
	xj4    = -1.65597e-6
	xke    = 0.743669161e-1
	xkmper = 6378.135
	xmnpda = 1440.0
	ae     = 1.0
	ck2    = 5.413080e-4
	ck4    = 0.62098875e-6
	qoms2t = 1.88027916e-9
	s0     = 1.01222928
)

// Elements holds the decoded mean elements of a single TLE, plus its epoch
// expressed as a Modified Julian Date for direct use with skytime/doppler.
type Elements struct {
	SatNo    int
	Name     string
	EpochMJD float64

	incRad, omgRad, eccentricity, argpRad, maRad, meanMotionRad, bstar float64
}

// Parse decodes a classic two-line element pair (without the optional
// leading name line) into Elements.
func Parse(line1, line2 string) (Elements, error) {
	var e Elements
	if len(line1) < 69 || len(line2) < 69 {
		return e, fmt.Errorf("sgp4: TLE lines too short")
	}
	if !checksumOK(line1) || !checksumOK(line2) {
		return e, fmt.Errorf("sgp4: TLE checksum mismatch")
	}

	satNoStr := strings.TrimSpace(line1[2:7])
	satNo, err := strconv.Atoi(satNoStr)
	if err != nil {
		return e, fmt.Errorf("sgp4: bad satellite number %q: %w", satNoStr, err)
	}
	satNo2Str := strings.TrimSpace(line2[2:7])
	if satNo2Str != satNoStr {
		return e, fmt.Errorf("sgp4: satno mismatch between lines: %s vs %s", satNoStr, satNo2Str)
	}

	year := str2num(line1, 18, 2)
	doy := str2num(line1, 20, 12)
	bstarMant := str2num(line1, 53, 6)
	bstarExp := str2num(line1, 59, 2)

	epochYear := year + 1900.0
	if year < 57.0 {
		epochYear = year + 2000.0
	}
	epoch := time.Date(int(epochYear), time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration((doy - 1.0) * 86400.0 * float64(time.Second)))

	inc := str2num(line2, 8, 8)
	raan := str2num(line2, 17, 8)
	ecc := str2num(line2, 26, 7) * 1e-7
	argp := str2num(line2, 34, 8)
	ma := str2num(line2, 43, 8)
	meanMotion := str2num(line2, 52, 11)

	if meanMotion <= 0.0 || ecc < 0.0 {
		return e, fmt.Errorf("sgp4: invalid elements for satno %d", satNo)
	}

	e.SatNo = satNo
	e.EpochMJD = skytime.MJDFromTime(epoch)
	e.incRad = inc * de2ra
	e.omgRad = raan * de2ra
	e.eccentricity = ecc
	e.argpRad = argp * de2ra
	e.maRad = ma * de2ra
	e.meanMotionRad = meanMotion * twopi / xmnpda
	e.bstar = bstarMant * 1e-5 * math.Pow(10.0, bstarExp) / ae
	return e, nil
}

func checksumOK(line string) bool {
	if len(line) < 69 {
		return false
	}
	cs := 0
	for i := 0; i < 68; i++ {
		c := line[i]
		if c >= '0' && c <= '9' {
			cs += int(c - '0')
		} else if c == '-' {
			cs++
		}
	}
	want := int(line[68] - '0')
	return want == cs%10
}

func str2num(s string, i, n int) float64 {
	if i < 0 || len(s) < i {
		return 0.0
	}
	if i+n > len(s) {
		s = s[i:]
	} else {
		s = s[i : i+n]
	}
	s = strings.NewReplacer("d", "E", "D", "E").Replace(s)
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// Propagate advances the element set to the given Julian Date and returns
// the ECI position (km) and velocity (km/s). Returns an error in place of
// the teacher's silent SGDP4_ERROR print, so callers can log-and-skip per
// spec.md section 7 kind 4 without touching a shared diagnostic channel.
func (e Elements) Propagate(jd float64) (pos, vel skytime.Vec3, err error) {
	tsince := (jd - 2400000.5 - e.EpochMJD) * xmnpda // minutes since epoch

	xnodeo := e.omgRad
	omegao := e.argpRad
	xmo := e.maRad
	xincl := e.incRad
	xno := e.meanMotionRad
	bstar := e.bstar
	eo := e.eccentricity

	a1 := math.Pow(xke/xno, tothrd)
	cosio := math.Cos(xincl)
	theta2 := cosio * cosio
	x3thm1 := 3.0*theta2 - 1.0
	eosq := eo * eo
	betao2 := 1.0 - eosq
	betao := math.Sqrt(betao2)
	del1 := 1.5 * ck2 * x3thm1 / (a1 * a1 * betao * betao2)
	ao := a1 * (1.0 - del1*(0.5*tothrd+del1*(1.0+134.0/81.0*del1)))
	delo := 1.5 * ck2 * x3thm1 / (ao * ao * betao * betao2)
	xnodp := xno / (1.0 + delo)
	aodp := ao / (1.0 - delo)

	isimp := 0
	if aodp*(1.0-eo)/ae < 220.0/xkmper+ae {
		isimp = 1
	}

	s4 := s0
	qoms24 := qoms2t
	perige := (aodp*(1.0-eo) - ae) * xkmper
	if perige < 156.0 {
		s4 = perige - 78.0
		if perige <= 98.0 {
			s4 = 20.0
		}
		qoms24 = math.Pow((120.0-s4)*ae/xkmper, 4.0)
		s4 = s4/xkmper + ae
	}

	pinvsq := 1.0 / (aodp * aodp * betao2 * betao2)
	tsi := 1.0 / (aodp - s4)
	eta := aodp * eo * tsi
	etasq := eta * eta
	eeta := eo * eta
	psisq := math.Abs(1.0 - etasq)
	coef := qoms24 * math.Pow(tsi, 4.0)
	coef1 := coef / math.Pow(psisq, 3.5)
	c2 := coef1 * xnodp * (aodp*(1.0+1.5*etasq+eeta*(4.0+etasq)) + 0.75*
		ck2*tsi/psisq*x3thm1*(8.0+3.0*etasq*(8.0+etasq)))
	c1 := bstar * c2
	sinio := math.Sin(xincl)
	a3ovk2 := -xj3 / ck2 * math.Pow(ae, 3.0)
	c3 := coef * tsi * a3ovk2 * xnodp * ae * sinio / eo
	x1mth2 := 1.0 - theta2
	c4 := 2.0 * xnodp * coef1 * aodp * betao2 * (eta*
		(2.0+0.5*etasq) + eo*(0.5+2.0*etasq) - 2.0*ck2*tsi/
		(aodp*psisq)*(-3.0*x3thm1*(1.0-2.0*eeta+etasq*
		(1.5-0.5*eeta))+0.75*x1mth2*(2.0*etasq-eeta*
		(1.0+etasq))*math.Cos(2.0*omegao)))
	c5 := 2.0 * coef1 * aodp * betao2 * (1.0 + 2.75*(etasq+eeta) + eeta*etasq)
	theta4 := theta2 * theta2
	temp1 := 3.0 * ck2 * pinvsq * xnodp
	temp2 := temp1 * ck2 * pinvsq
	temp3 := 1.25 * ck4 * pinvsq * pinvsq * xnodp
	xmdot := xnodp + 0.5*temp1*betao*x3thm1 + 0.0625*temp2*betao*
		(13.0-78.0*theta2+137.0*theta4)
	x1m5th := 1.0 - 5.0*theta2
	omgdot := -0.5*temp1*x1m5th + 0.0625*temp2*(7.0-114.0*theta2+
		395.0*theta4) + temp3*(3.0-36.0*theta2+49.0*theta4)
	xhdot1 := -temp1 * cosio
	xnodot := xhdot1 + (0.5*temp2*(4.0-19.0*theta2)+2.0*temp3*(3.0-
		7.0*theta2))*cosio
	omgcof := bstar * c3 * math.Cos(omegao)
	xmcof := -tothrd * coef * bstar * ae / eeta
	xnodcf := 3.5 * betao2 * xhdot1 * c1
	t2cof := 1.5 * c1
	xlcof := 0.125 * a3ovk2 * sinio * (3.0 + 5.0*cosio) / (1.0 + cosio)
	aycof := 0.25 * a3ovk2 * sinio
	delmo := math.Pow(1.0+eta*math.Cos(xmo), 3.0)
	sinmo := math.Sin(xmo)
	x7thm1 := 7.0*theta2 - 1.0

	var d2, d3, d4, t3cof, t4cof, t5cof float64
	if isimp != 1 {
		c1sq := c1 * c1
		d2 = 4.0 * aodp * tsi * c1sq
		temp := d2 * tsi * c1 / 3.0
		d3 = (17.0*aodp + s4) * temp
		d4 = 0.5 * temp * aodp * tsi * (221.0*aodp + 31.0*s4) * c1
		t3cof = d2 + 2.0*c1sq
		t4cof = 0.25 * (3.0*d3 + c1*(12.0*d2+10.0*c1sq))
		t5cof = 0.2 * (3.0*d4 + 12.0*c1*d3 + 6.0*d2*d2 + 15.0*c1sq*(2.0*d2+c1sq))
	}

	xmdf := xmo + xmdot*tsince
	omgadf := omegao + omgdot*tsince
	xnoddf := xnodeo + xnodot*tsince
	omega := omgadf
	xmp := xmdf
	tsq := tsince * tsince
	xnode := xnoddf + xnodcf*tsq
	tempa := 1.0 - c1*tsince
	tempe := bstar * c4 * tsince
	templ := t2cof * tsq
	if isimp == 1 {
		delomg := omgcof * tsince
		delm := xmcof * (math.Pow(1.0+eta*math.Cos(xmdf), 3.0) - delmo)
		temp := delomg + delm
		xmp = xmdf + temp
		omega = omgadf - temp
		tcube := tsq * tsince
		tfour := tsince * tcube
		tempa = tempa - d2*tsq - d3*tcube - d4*tfour
		tempe = tempe + bstar*c5*(math.Sin(xmp)-sinmo)
		templ = templ + t3cof*tcube + tfour*(t4cof+tsince*t5cof)
	}
	a := aodp * math.Pow(tempa, 2.0)
	e2 := eo - tempe
	if a*(1.0-e2) < 1.0 {
		return pos, vel, fmt.Errorf("sgp4: satellite %d decayed at this epoch", e.SatNo)
	}
	xl := xmp + omega + xnode + xnodp*templ
	beta := math.Sqrt(1.0 - e2*e2)
	xn := xke / math.Pow(a, 1.5)

	axn := e2 * math.Cos(omega)
	temp := 1.0 / (a * beta * beta)
	xll := temp * xlcof * axn
	aynl := temp * aycof
	xlt := xl + xll
	ayn := e2*math.Sin(omega) + aynl

	capu := math.Mod(xlt-xnode, twopi)
	temp2v := capu
	var epw float64
	for i := 0; i < 10; i++ {
		sinepw := math.Sin(temp2v)
		cosepw := math.Cos(temp2v)
		temp3 := axn * sinepw
		temp4 := ayn * cosepw
		temp5 := axn * cosepw
		temp6 := ayn * sinepw
		epw = (capu-temp4+temp3-temp2v)/(1.0-temp5-temp6) + temp2v
		if math.Abs(epw-temp2v) <= e6a {
			break
		}
		temp2v = epw
	}

	sinepw := math.Sin(temp2v)
	cosepw := math.Cos(temp2v)
	temp5 := axn * cosepw
	temp6 := ayn * sinepw
	temp3 = axn * sinepw
	temp4 := ayn * cosepw

	ecose := temp5 + temp6
	esine := temp3 - temp4
	elsq := axn*axn + ayn*ayn
	tempv := 1.0 - elsq
	pl := a * tempv
	r := a * (1.0 - ecose)
	temp1v := 1.0 / r
	rdot := xke * math.Sqrt(a) * esine * temp1v
	rfdot := xke * math.Sqrt(pl) * temp1v
	temp2b := a * temp1v
	betal := math.Sqrt(tempv)
	temp3b := 1.0 / (1.0 + betal)
	cosu := temp2b * (cosepw - axn + ayn*esine*temp3b)
	sinu := temp2b * (sinepw - ayn - axn*esine*temp3b)
	u := math.Atan2(sinu, cosu)
	sin2u := 2.0 * sinu * cosu
	cos2u := 2.0*cosu*cosu - 1.0
	tempc := 1.0 / pl
	temp1c := ck2 * tempc
	temp2c := temp1c * tempc

	rk := r*(1.0-1.5*temp2c*betal*x3thm1) + 0.5*temp1c*x1mth2*cos2u
	uk := u - 0.25*temp2c*x7thm1*sin2u
	xnodek := xnode + 1.5*temp2c*cosio*sin2u
	xinck := xincl + 1.5*temp2c*cosio*sinio*cos2u
	rdotk := rdot - xn*temp1c*x1mth2*sin2u
	rfdotk := rfdot + xn*temp1c*(x1mth2*cos2u+1.5*x3thm1)

	sinuk := math.Sin(uk)
	cosuk := math.Cos(uk)
	sinik := math.Sin(xinck)
	cosik := math.Cos(xinck)
	sinnok := math.Sin(xnodek)
	cosnok := math.Cos(xnodek)
	xmx := -sinnok * cosik
	xmy := cosnok * cosik
	ux := xmx*sinuk + cosnok*cosuk
	uy := xmy*sinuk + sinnok*cosuk
	uz := sinik * sinuk
	vx := xmx*cosuk - cosnok*sinuk
	vy := xmy*cosuk - sinnok*sinuk
	vz := sinik * cosuk

	x := rk * ux
	y := rk * uy
	z := rk * uz
	xdot := rdotk*ux + rfdotk*vx
	ydot := rdotk*uy + rfdotk*vy
	zdot := rdotk*uz + rfdotk*vz

	pos = skytime.Vec3{
		X: x * xkmper / ae,
		Y: y * xkmper / ae,
		Z: z * xkmper / ae,
	}
	vel = skytime.Vec3{
		X: xdot * xkmper / ae * xmnpda / 86400.0,
		Y: ydot * xkmper / ae * xmnpda / 86400.0,
		Z: zdot * xkmper / ae * xmnpda / 86400.0,
	}
	return pos, vel, nil
}
