// Package catalog reads the ground-station site table, the frequency
// catalog and TLE files that back the trace synthesizer and identifier.
// Grounded on the original rftrace.c's get_site/read_frequencies and the
// teacher's tle.go TleRead.
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lezbar/strf/internal/config"
)

// GravesSiteID is the sentinel site identifying the Graves illuminator
// (spec.md Glossary, section 3).
const GravesSiteID = 9999

// Site is an immutable ground-station (or illuminator) location.
type Site struct {
	ID       int
	LonDeg   float64
	LatDeg   float64
	AltKm    float64
	Observer string
}

// ErrSiteNotFound is returned when the site table is missing or has no
// matching entry. spec.md section 9 calls the legacy C behavior (returning
// a zero-initialized site) a latent defect and asks implementers to surface
// an explicit error instead; this is that error.
var ErrSiteNotFound = errors.New("catalog: site not found")

// LoadSite reads cfg.SitesPath() and returns the entry matching id.
//
// Line format (spec.md section 6): "id(%4d) abbrev(%2s) lat(deg) lon(deg)
// alt_m(%f)" followed by free text from column 38 to end-of-line naming the
// observer. Lines shorter than 38 bytes have no observer field (spec.md
// section 9's off-by-one guard).
func LoadSite(cfg config.Config, id int) (Site, error) {
	path := cfg.SitesPath()
	f, err := os.Open(path)
	if err != nil {
		return Site{}, fmt.Errorf("%w: %s: %v", ErrSiteNotFound, path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, "#") {
			continue
		}
		if len(line) < 22 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		lineID, err := strconv.Atoi(fields[0])
		if err != nil || lineID != id {
			continue
		}
		lat, err1 := strconv.ParseFloat(fields[2], 64)
		lon, err2 := strconv.ParseFloat(fields[3], 64)
		altM, err3 := strconv.ParseFloat(fields[4], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		observer := ""
		if len(line) > 38 {
			observer = strings.TrimRight(line[38:], " \r\n")
		}
		return Site{
			ID:       lineID,
			LonDeg:   lon,
			LatDeg:   lat,
			AltKm:    altM / 1000.0,
			Observer: observer,
		}, nil
	}
	if err := sc.Err(); err != nil {
		return Site{}, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return Site{}, fmt.Errorf("%w: id %d in %s", ErrSiteNotFound, id, path)
}
