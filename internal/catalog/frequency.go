package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FrequencyEntry is one line of the frequency catalog: a catalog number and
// its known rest-frame emission frequency in MHz (spec.md section 3/4.2).
type FrequencyEntry struct {
	SatNo   int
	FreqMHz float64
}

// ReadFrequencies reads "SSSSS FFF.FFF [...]" lines from path. Trailing
// fields (timestamp, site id) appended by AppendFrequency are ignored here;
// only the leading satno/freq pair is meaningful for band-matching (spec.md
// section 4.3 step 2).
func ReadFrequencies(path string) ([]FrequencyEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening frequency list %s: %w", path, err)
	}
	defer f.Close()

	var entries []FrequencyEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		satno, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		freq, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		entries = append(entries, FrequencyEntry{SatNo: satno, FreqMHz: freq})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	return entries, nil
}

// InBand reports whether a catalog entry's frequency (MHz) falls within
// [centerHz-bw/2, centerHz+bw/2], converted to Hz (spec.md section 4.3 step 1-2).
func InBand(freqMHz, centerHz, bandwidthHz float64) bool {
	freqHz := freqMHz * 1e6
	fmin := centerHz - bandwidthHz/2
	fmax := centerHz + bandwidthHz/2
	return freqHz >= fmin && freqHz <= fmax
}

// AppendFrequency appends a confirmed identification to the frequency
// catalog: "<satno> <freq_MHz> <ISO-8601 timestamp> <site_id>" (spec.md
// section 4.4).
func AppendFrequency(path string, satno int, freqMHz float64, ts time.Time, siteID int) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("catalog: appending to %s: %w", path, err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%05d %8.3f %s %04d\n", satno, freqMHz, ts.UTC().Format("2006-01-02T15:04:05"), siteID)
	return err
}

// AppendLog appends the parallel confirmation record to log.txt (spec.md
// section 4.4).
func AppendLog(path string, satno int, freqMHz, rmsKHz float64, tcaISO string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("catalog: appending to %s: %w", path, err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%05d %8.3f %.3f %s\n", satno, freqMHz, rmsKHz, tcaISO)
	return err
}
