package doppler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezbar/strf/internal/catalog"
	"github.com/lezbar/strf/internal/config"
	"github.com/lezbar/strf/internal/doppler"
)

const issTLE = `1 25544U 98067A   26024.50000000  .00023329  00000+0  42269-3 0  9993
2 25544  51.6331 308.6863 0007748  41.1873 318.9699 15.49488068548921
`

func setupCatalog(t *testing.T) (config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "sites.txt"),
		[]byte("4171 PI  52.8344   6.3785    10.0     Dwingeloo\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "frequencies.txt"),
		[]byte("25544  437.800\n"), 0644))
	tlePath := filepath.Join(dir, "catalog.tle")
	require.NoError(t, os.WriteFile(tlePath, []byte(issTLE), 0644))
	return config.Config{DataDir: dir}, tlePath
}

func epochMJDs(t *testing.T, cfg config.Config, tlePath string, n int, stepSec float64) []float64 {
	t.Helper()
	satno := 25544
	elements, err := catalog.ReadAll(tlePath, &satno)
	require.NoError(t, err)
	require.NotEmpty(t, elements)
	mjds := make([]float64, n)
	for i := range mjds {
		mjds[i] = elements[0].EpochMJD + float64(i)*stepSec/86400.0
	}
	return mjds
}

func TestSynthesizeFindsInBandCandidateAndVariesFrequency(t *testing.T) {
	cfg, tlePath := setupCatalog(t)
	mjds := epochMJDs(t, cfg, tlePath, 30, 2.0)

	traces, err := doppler.Synthesize(context.Background(), cfg, tlePath, mjds, 4171, 437.8e6, 50e3, false, nil)
	require.NoError(t, err)
	require.Len(t, traces, 1)

	tr := traces[0]
	assert.Equal(t, 25544, tr.SatNo)
	require.Equal(t, len(mjds), tr.N())

	min, max := tr.Freq[0], tr.Freq[0]
	for _, f := range tr.Freq {
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	// The range-rate of a LEO object changes over the 58 s window, so the
	// predicted frequency should not be a flat line.
	assert.Greater(t, max-min, 1.0)
}

func TestSynthesizeOutOfBandReturnsNoTraces(t *testing.T) {
	cfg, tlePath := setupCatalog(t)
	mjds := epochMJDs(t, cfg, tlePath, 5, 2.0)

	traces, err := doppler.Synthesize(context.Background(), cfg, tlePath, mjds, 4171, 1.0e9, 1e3, false, nil)
	require.NoError(t, err)
	assert.Empty(t, traces)
}

func TestIdentifySelfConvergesOnSynthesizedTrace(t *testing.T) {
	cfg, tlePath := setupCatalog(t)
	mjds := epochMJDs(t, cfg, tlePath, 30, 2.0)

	traces, err := doppler.Synthesize(context.Background(), cfg, tlePath, mjds, 4171, 437.8e6, 50e3, false, nil)
	require.NoError(t, err)
	require.Len(t, traces, 1)
	tr := traces[0]

	observed := doppler.ObservedTrace{SiteID: 4171, MJD: tr.MJD, FreqHz: tr.Freq}
	report, err := doppler.Identify(context.Background(), cfg, tlePath, observed, nil, false, nil)
	require.NoError(t, err)
	require.NotNil(t, report.Best)
	assert.Equal(t, 25544, report.Best.SatNo)
	assert.Less(t, report.Best.RMSHz, 1.0)
}

func TestIdentifyRejectsShortObservedTrace(t *testing.T) {
	cfg, tlePath := setupCatalog(t)
	observed := doppler.ObservedTrace{SiteID: 4171, MJD: []float64{1.0}, FreqHz: []float64{1.0}}
	_, err := doppler.Identify(context.Background(), cfg, tlePath, observed, nil, false, nil)
	assert.Error(t, err)
}

func TestTraceCrossesRestFrequencyAtMostOnce(t *testing.T) {
	cfg, tlePath := setupCatalog(t)
	mjds := epochMJDs(t, cfg, tlePath, 300, 1.0)

	traces, err := doppler.Synthesize(context.Background(), cfg, tlePath, mjds, 4171, 437.8e6, 50e3, false, nil)
	require.NoError(t, err)
	require.Len(t, traces, 1)
	tr := traces[0]

	// Within a five-minute window a LEO object's range-rate changes sign at
	// most once, so the predicted frequency crosses 437.8 MHz at most once.
	crossings := 0
	for i := 1; i < tr.N(); i++ {
		a := tr.Freq[i-1] - tr.Freq0
		b := tr.Freq[i] - tr.Freq0
		if (a > 0) != (b > 0) {
			crossings++
		}
	}
	assert.LessOrEqual(t, crossings, 1)
}
