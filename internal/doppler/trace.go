// Package doppler synthesizes and identifies predicted Doppler-shifted
// frequency tracks of catalog objects, in both direct-emitter and bistatic
// "Graves illuminator" geometries. Grounded on the original rftrace.c
// (compute_trace, identify_trace, identify_trace_graves).
package doppler

import (
	"context"
	"io"

	"github.com/lezbar/strf/internal/catalog"
	"github.com/lezbar/strf/internal/config"
	"github.com/lezbar/strf/internal/diagnostics"
	"github.com/lezbar/strf/internal/geodesy"
	"github.com/lezbar/strf/internal/skytime"
)

// invisibleZenithAngle marks a bistatic sample point outside the
// illuminator's beam constraint (spec.md section 3/4.3).
const invisibleZenithAngle = 100.0

// gravesFixedFreqHz is the published Graves carrier, hard-coded in the
// bistatic identifier regardless of the catalog's freq0 (spec.md section
// 9's flagged open question — preserved, not "fixed").
const gravesFixedFreqHz = 143050000.0

// Trace is a per-candidate predicted or observed frequency track.
// mjd/freq/za are parallel, equal-length, owned exclusively by the Trace
// (spec.md section 3 invariants).
type Trace struct {
	SatNo  int
	SiteID int
	Freq0  float64 // rest-frame emission frequency, Hz
	MJD    []float64
	Freq   []float64 // Hz
	ZA     []float64 // degrees; 100.0 = invisible from illuminator
}

func (t Trace) N() int { return len(t.MJD) }

// point is the per-epoch geometric context consumed within one synthesis or
// identification call (spec.md section 3).
type point struct {
	obsPos, obsVel skytime.Vec3
	illumPos       skytime.Vec3
	illumVel       skytime.Vec3
}

// validPrefixLen returns the count of leading nonzero entries in mjds; a
// zero terminates the valid prefix (spec.md section 4.3 step 3).
func validPrefixLen(mjds []float64) int {
	for i, v := range mjds {
		if v == 0 {
			return i
		}
	}
	return len(mjds)
}

func buildPoints(mjds []float64, site catalog.Site, illuminator *catalog.Site) []point {
	pts := make([]point, len(mjds))
	for i, mjd := range mjds {
		pts[i].obsPos, pts[i].obsVel = skytime.ObserverECI(mjd, site.LonDeg, site.LatDeg, site.AltKm)
		if illuminator != nil {
			pts[i].illumPos, pts[i].illumVel = skytime.ObserverECI(mjd, illuminator.LonDeg, illuminator.LatDeg, illuminator.AltKm)
		}
	}
	return pts
}

// Synthesize computes predicted Doppler tracks for every catalog object
// whose rest frequency falls within [centerFreqHz-bandwidthHz/2,
// centerFreqHz+bandwidthHz/2], propagated at each of mjds (spec.md section
// 4.3). The last matching TLE for a given satno wins (spec.md section 9,
// by design, not a bug).
func Synthesize(
	ctx context.Context,
	cfg config.Config,
	tlePath string,
	mjds []float64,
	siteID int,
	centerFreqHz, bandwidthHz float64,
	bistatic bool,
	diag *diagnostics.Sink,
) ([]Trace, error) {
	if diag == nil {
		diag = diagnostics.Discard
	}

	entries, err := catalog.ReadFrequencies(cfg.FrequenciesPath())
	if err != nil {
		return nil, err
	}
	var candidates []catalog.FrequencyEntry
	for _, e := range entries {
		if catalog.InBand(e.FreqMHz, centerFreqHz, bandwidthHz) {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	site, err := catalog.LoadSite(cfg, siteID)
	if err != nil {
		return nil, err
	}
	var illuminator *catalog.Site
	if bistatic {
		g, err := catalog.LoadSite(cfg, catalog.GravesSiteID)
		if err != nil {
			return nil, err
		}
		illuminator = &g
	}

	m := validPrefixLen(mjds)
	epochs := mjds[:m]
	pts := buildPoints(epochs, site, illuminator)

	traces := make([]Trace, 0, len(candidates))
	for _, cand := range candidates {
		t := Trace{
			SatNo:  cand.SatNo,
			SiteID: siteID,
			Freq0:  cand.FreqMHz * 1e6,
			MJD:    append([]float64(nil), epochs...),
			Freq:   make([]float64, m),
			ZA:     make([]float64, m),
		}

		satno := cand.SatNo
		r, err := catalog.OpenTLEReader(tlePath, &satno)
		if err != nil {
			return nil, err
		}
		failed := false
		for !failed {
			select {
			case <-ctx.Done():
				r.Close()
				return traces, ctx.Err()
			default:
			}
			el, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				diag.Warnf("trace: satno %d: %v", satno, err)
				break
			}
			// Last matching TLE wins: each successive element set
			// overwrites the previous one's contribution in place
			// (spec.md section 9, by design).
			for i, mjd := range epochs {
				pos, vel, perr := el.Propagate(mjd + 2400000.5)
				if perr != nil {
					diag.Warnf("trace: satno %d: %v", satno, perr)
					failed = true
					break
				}
				rangeKm, vRate := geodesy.RangeRate(pos, vel, pts[i].obsPos, pts[i].obsVel)
				delta := pos.Sub(pts[i].obsPos)
				za := geodesy.ZenithAngleDeg(pts[i].obsPos, delta, rangeKm)

				if !bistatic {
					t.Freq[i] = (1.0 - vRate/skytime.SpeedOfLightKMS) * t.Freq0
					t.ZA[i] = za
					continue
				}

				rg, vg := geodesy.RangeRate(pos, vel, pts[i].illumPos, pts[i].illumVel)
				t.Freq[i] = (1.0 - vRate/skytime.SpeedOfLightKMS) * (1.0 - vg/skytime.SpeedOfLightKMS) * t.Freq0

				gDelta := pos.Sub(pts[i].illumPos)
				ra, de := geodesy.RaDec(gDelta, rg)
				azi, alt := geodesy.EquatorialToHorizontal(mjd, ra, de, illuminator.LonDeg, illuminator.LatDeg)
				if beamVisible(azi, alt) {
					t.ZA[i] = za
				} else {
					t.ZA[i] = invisibleZenithAngle
				}
			}
		}
		r.Close()
		if failed {
			// Propagator failure: the candidate is skipped.
			continue
		}
		traces = append(traces, t)
	}
	return traces, nil
}

// beamVisible reports whether the illuminator beam constraint of spec.md
// section 4.3(c) holds: (azi<90 or azi>270) and 15 < alt < 40.
func beamVisible(aziDeg, altDeg float64) bool {
	return (aziDeg < 90.0 || aziDeg > 270.0) && altDeg > 15.0 && altDeg < 40.0
}
