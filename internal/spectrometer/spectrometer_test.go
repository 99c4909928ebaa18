package spectrometer

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDCInput writes nBlocks*nchan complex int16 samples with a constant
// (DC) I/Q value, the input that should concentrate all power in the
// FFT-shifted center bin.
func writeDCInput(t *testing.T, path string, nchan, nBlocks int, amplitude int16) {
	t.Helper()
	buf := make([]byte, 4*nchan*nBlocks)
	for i := 0; i < nchan*nBlocks; i++ {
		binary.LittleEndian.PutUint16(buf[4*i:], uint16(amplitude))
		binary.LittleEndian.PutUint16(buf[4*i+2:], uint16(0))
	}
	require.NoError(t, os.WriteFile(path, buf, 0644))
}

func TestRunProducesCenterBinPeakForDCInput(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.dat")
	nchan := 16
	nint := 8
	writeDCInput(t, inPath, nchan, nint, 20000)

	cfg := Config{
		InputPath:    inPath,
		OutputDir:    dir,
		OutputPrefix: "test",
		CenterFreqHz: 100e6,
		SampleRateHz: float64(nchan) * 1000.0,
		ChannelSzHz:  1000.0,
		IntegTimeSec: float64(nint) / (float64(nchan) * 1000.0) * float64(nchan),
		NSub:         1,
		Decimation:   1,
		InputFormat:  FormatInt16,
		Quiet:        true,
	}
	require.Equal(t, nint, cfg.nint())
	require.Equal(t, nchan, cfg.nchan())

	require.NoError(t, Run(context.Background(), cfg))

	data, err := os.ReadFile(filepath.Join(dir, "test_000000.bin"))
	require.NoError(t, err)
	require.Len(t, data, headerSize+4*nchan)

	z := make([]float64, nchan)
	payload := data[headerSize:]
	for i := range z {
		bits := binary.LittleEndian.Uint32(payload[4*i:])
		z[i] = float64(math.Float32frombits(bits))
	}

	peak := 0
	for i := 1; i < nchan; i++ {
		if z[i] > z[peak] {
			peak = i
		}
	}
	assert.Equal(t, nchan/2, peak, "DC power should land in the FFT-shifted center bin")
}

func TestRunTerminatesCleanlyOnShortRead(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.dat")
	nchan := 8
	// One full block plus a partial, short second block.
	writeDCInput(t, inPath, nchan, 1, 5000)
	f, err := os.OpenFile(inPath, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg := Config{
		InputPath:    inPath,
		OutputDir:    dir,
		OutputPrefix: "short",
		CenterFreqHz: 100e6,
		SampleRateHz: float64(nchan) * 1000.0,
		ChannelSzHz:  1000.0,
		IntegTimeSec: 1.0,
		NSub:         5,
		Decimation:   1,
		InputFormat:  FormatInt16,
		Quiet:        true,
	}

	err = Run(context.Background(), cfg)
	assert.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	found := false
	for _, e := range entries {
		if e.Name() == "short_000000.bin" {
			found = true
		}
	}
	assert.True(t, found, "output file for the partially-filled subintegration should still be written")
}

func TestRunEightBitOutputPeaksAtCenterChannel(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.dat")
	nchan := 16
	nint := 8
	writeDCInput(t, inPath, nchan, nint, 20000)

	cfg := Config{
		InputPath:    inPath,
		OutputDir:    dir,
		OutputPrefix: "q",
		CenterFreqHz: 100e6,
		SampleRateHz: float64(nchan) * 1000.0,
		ChannelSzHz:  1000.0,
		IntegTimeSec: float64(nint) / (float64(nchan) * 1000.0) * float64(nchan),
		NSub:         1,
		Decimation:   1,
		InputFormat:  FormatInt16,
		EightBit:     true,
		Quiet:        true,
	}
	require.NoError(t, Run(context.Background(), cfg))

	data, err := os.ReadFile(filepath.Join(dir, "q_000000.bin"))
	require.NoError(t, err)
	require.Len(t, data, headerSize+nchan)

	payload := data[headerSize:]
	peak, peakVal := 0, int8(payload[0])
	for i, b := range payload {
		v := int8(b)
		if v > peakVal {
			peak, peakVal = i, v
		}
	}
	assert.Equal(t, nchan/2, peak)
	assert.Greater(t, peakVal, int8(0))
}
