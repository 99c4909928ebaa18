package spectrometer

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFloat32RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	z := []float64{1.5, -2.25, 0.0, 1e6}
	require.NoError(t, writeFloat32(&buf, z))

	data := buf.Bytes()
	require.Len(t, data, 4*len(z))
	for i, want := range z {
		bits := binary.LittleEndian.Uint32(data[4*i:])
		got := float64(math.Float32frombits(bits))
		assert.InDelta(t, want, got, 1e-3)
	}
}

func TestWriteInt8PreservesSign(t *testing.T) {
	var buf bytes.Buffer
	cz := []int8{-128, -1, 0, 127}
	require.NoError(t, writeInt8(&buf, cz))

	data := buf.Bytes()
	require.Len(t, data, len(cz))
	for i, want := range cz {
		assert.Equal(t, want, int8(data[i]))
	}
}
