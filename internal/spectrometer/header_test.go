package spectrometer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildHeaderIsFixedSize(t *testing.T) {
	h := buildHeader("2024-01-01T00:00:00.000", 100e6, 1e6, 1.0, 1024, 60, false, 0, 0)
	assert.Len(t, h, headerSize)
}

func TestBuildHeaderContainsRequiredFields(t *testing.T) {
	h := buildHeader("2024-01-01T00:00:00.000", 100e6, 1e6, 1.0, 1024, 60, false, 0, 0)
	s := string(h)
	for _, field := range []string{"HEADER", "UTC_START", "FREQ", "BW", "LENGTH", "NCHAN", "NSUB", "END"} {
		assert.True(t, strings.Contains(s, field), "missing field %s", field)
	}
	assert.False(t, strings.Contains(s, "NBITS"))
}

func TestBuildHeaderEightBitIncludesMeanAndRMS(t *testing.T) {
	h := buildHeader("2024-01-01T00:00:00.000", 100e6, 1e6, 1.0, 1024, 60, true, 3.5, 0.8)
	s := string(h)
	assert.Contains(t, s, "NBITS")
	assert.Contains(t, s, "MEAN")
	assert.Contains(t, s, "RMS")
}

func TestBuildHeaderIsZeroPaddedAfterBody(t *testing.T) {
	h := buildHeader("2024-01-01T00:00:00.000", 100e6, 1e6, 1.0, 1024, 60, false, 0, 0)
	assert.Equal(t, byte(0), h[headerSize-1])
}
