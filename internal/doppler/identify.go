package doppler

import (
	"context"
	"errors"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/lezbar/strf/internal/catalog"
	"github.com/lezbar/strf/internal/config"
	"github.com/lezbar/strf/internal/diagnostics"
	"github.com/lezbar/strf/internal/geodesy"
	"github.com/lezbar/strf/internal/skytime"
)

// errInvalidObservedTrace is returned when the observed trace does not meet
// spec.md section 4.4's n>=2, equal-length-arrays precondition.
var errInvalidObservedTrace = errors.New("doppler: observed trace needs n>=2 with matching mjd/freq lengths")

// directRMSThresholdHz and bistaticRMSThresholdHz gate which candidates are
// reported (spec.md section 4.4).
const (
	directRMSThresholdHz   = 1000.0
	bistaticRMSThresholdHz = 50.0
)

// ObservedTrace is an operator-supplied (time, frequency) curve to identify
// against the TLE catalog (spec.md section 4.4). n >= 2.
type ObservedTrace struct {
	SiteID int
	MJD    []float64
	FreqHz []float64
}

// Candidate is one TLE's fit against the observed trace.
type Candidate struct {
	SatNo      int
	Freq0Hz    float64
	RMSHz      float64
	TCAMJD     float64 // 0 if no TCA found in the window
	HasTCA     bool
	MidAziDeg  float64
	MidAltDeg  float64
	Reportable bool
}

// Report is the outcome of Identify: every candidate whose RMS passed the
// reporting threshold, ranked best (lowest RMS) first, plus the best match.
type Report struct {
	Candidates []Candidate
	Best       *Candidate
}

// Identify fits observed against every TLE for satnoFilter (or every TLE in
// the file, if nil), selecting the minimum-RMS candidate as the best match
// (spec.md section 4.4).
func Identify(
	ctx context.Context,
	cfg config.Config,
	tlePath string,
	observed ObservedTrace,
	satnoFilter *int,
	bistatic bool,
	diag *diagnostics.Sink,
) (Report, error) {
	if diag == nil {
		diag = diagnostics.Discard
	}
	n := len(observed.MJD)
	if n < 2 || len(observed.FreqHz) != n {
		return Report{}, errInvalidObservedTrace
	}

	site, err := catalog.LoadSite(cfg, observed.SiteID)
	if err != nil {
		return Report{}, err
	}
	var illuminator *catalog.Site
	if bistatic {
		g, err := catalog.LoadSite(cfg, catalog.GravesSiteID)
		if err != nil {
			return Report{}, err
		}
		illuminator = &g
	}
	pts := buildPoints(observed.MJD, site, illuminator)
	mid := n / 2

	r, err := catalog.OpenTLEReader(tlePath, satnoFilter)
	if err != nil {
		return Report{}, err
	}
	defer r.Close()

	var report Report
	for {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		el, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			diag.Warnf("identify: %v", err)
			break
		}

		v := make([]float64, n)
		vg := make([]float64, n)
		var midAzi, midAlt float64
		propagationFailed := false
		for i, mjd := range observed.MJD {
			pos, vel, perr := el.Propagate(mjd + 2400000.5)
			if perr != nil {
				diag.Warnf("identify: satno %d: %v", el.SatNo, perr)
				propagationFailed = true
				break
			}
			_, rate := geodesy.RangeRate(pos, vel, pts[i].obsPos, pts[i].obsVel)
			v[i] = rate

			if bistatic {
				_, rateG := geodesy.RangeRate(pos, vel, pts[i].illumPos, pts[i].illumVel)
				vg[i] = rateG
			}
			if i == mid {
				delta := pos.Sub(pts[i].obsPos)
				midRangeKm := delta.Norm()
				ra, de := geodesy.RaDec(delta, midRangeKm)
				midAzi, midAlt = geodesy.EquatorialToHorizontal(mjd, ra, de, site.LonDeg, site.LatDeg)
			}
		}
		if propagationFailed {
			continue
		}

		var freq0 float64
		var rms float64
		threshold := directRMSThresholdHz
		if bistatic {
			freq0 = gravesFixedFreqHz
			rms = rmsAgainstBistatic(observed.FreqHz, v, vg, freq0)
			threshold = bistaticRMSThresholdHz
		} else {
			freq0 = weightedFreq0(observed.FreqHz, v)
			rms = rmsAgainstDirect(observed.FreqHz, v, freq0)
		}

		tcaMJD, hasTCA := timeOfClosestApproach(observed.MJD, v)

		cand := Candidate{
			SatNo:     el.SatNo,
			Freq0Hz:   freq0,
			RMSHz:     rms,
			TCAMJD:    tcaMJD,
			HasTCA:    hasTCA,
			MidAziDeg: midAzi,
			MidAltDeg: midAlt,
		}
		if rms < threshold {
			cand.Reportable = true
			report.Candidates = append(report.Candidates, cand)
			if report.Best == nil || rms < report.Best.RMSHz {
				best := cand
				report.Best = &best
			}
		}
	}
	sort.Slice(report.Candidates, func(i, j int) bool {
		return report.Candidates[i].RMSHz < report.Candidates[j].RMSHz
	})
	return report, nil
}

// weightedFreq0 performs the single weighted least-squares step of spec.md
// section 4.4: freq0_hat = sum(beta*f) / sum(beta^2), beta = 1 - v/C.
func weightedFreq0(observedFreq, v []float64) float64 {
	n := len(v)
	beta := make([]float64, n)
	for i, vi := range v {
		beta[i] = 1.0 - vi/skytime.SpeedOfLightKMS
	}
	num := floats.Dot(beta, observedFreq)
	den := floats.Dot(beta, beta)
	if den == 0 {
		return 0
	}
	return num / den
}

func rmsAgainstDirect(observedFreq, v []float64, freq0 float64) float64 {
	n := len(v)
	sum := 0.0
	for i, vi := range v {
		beta := 1.0 - vi/skytime.SpeedOfLightKMS
		d := observedFreq[i] - beta*freq0
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rmsAgainstBistatic(observedFreq, v, vg []float64, freq0 float64) float64 {
	n := len(v)
	sum := 0.0
	for i := range v {
		beta := 1.0 - v[i]/skytime.SpeedOfLightKMS
		betaG := 1.0 - vg[i]/skytime.SpeedOfLightKMS
		d := observedFreq[i] - beta*betaG*freq0
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// timeOfClosestApproach finds the latest index i>0 where v[i]*v[i-1] < 0
// (spec.md section 4.4 and section 9's mandated i=1 start, fixing the
// original rftrace.c's out-of-bounds v[-1] read at i=0).
func timeOfClosestApproach(mjd, v []float64) (tcaMJD float64, found bool) {
	for i := 1; i < len(v); i++ {
		if v[i]*v[i-1] < 0.0 {
			tcaMJD = mjd[i]
			found = true
		}
	}
	return tcaMJD, found
}
