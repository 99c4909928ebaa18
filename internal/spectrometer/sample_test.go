package spectrometer

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0
	}
	return w
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatInt16, "int": FormatInt16, "char": FormatInt8, "float": FormatFloat32}
	for s, want := range cases {
		got, ok := ParseFormat(s)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseFormat("bogus")
	assert.False(t, ok)
}

func TestInt16ReaderDecodesAndNormalizes(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:], uint16(int16(16384)))
	binary.LittleEndian.PutUint16(buf[2:], uint16(int16(-16384)))
	binary.LittleEndian.PutUint16(buf[4:], uint16(int16(0)))
	binary.LittleEndian.PutUint16(buf[6:], uint16(int16(32767)))

	r := NewSampleReader(FormatInt16, 2)
	dst := make([]complex128, 2)
	n, err := r.readBlock(bytes.NewReader(buf), dst, flatWindow(2))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 0.5, real(dst[0]), 1e-9)
	assert.InDelta(t, -0.5, imag(dst[0]), 1e-9)
}

func TestInt8ReaderShortReadReturnsEOF(t *testing.T) {
	r := NewSampleReader(FormatInt8, 4)
	dst := make([]complex128, 4)
	n, err := r.readBlock(bytes.NewReader([]byte{1, 2, 3}), dst, flatWindow(4))
	assert.Equal(t, io.EOF, err)
	assert.Less(t, n, 4)
}

func TestFloat32ReaderPassesThroughValue(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(-0.75))

	r := NewSampleReader(FormatFloat32, 1)
	dst := make([]complex128, 1)
	n, err := r.readBlock(bytes.NewReader(buf), dst, flatWindow(1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.25, real(dst[0]), 1e-6)
	assert.InDelta(t, -0.75, imag(dst[0]), 1e-6)
}

func TestReaderAppliesWindow(t *testing.T) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:], uint16(int16(32768/2)))
	binary.LittleEndian.PutUint16(buf[2:], uint16(int16(0)))

	r := NewSampleReader(FormatInt16, 1)
	dst := make([]complex128, 1)
	_, err := r.readBlock(bytes.NewReader(buf), dst, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, real(dst[0]), 1e-9)
}
