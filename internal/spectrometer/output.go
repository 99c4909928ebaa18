package spectrometer

import (
	"encoding/binary"
	"io"
	"math"
)

// writeFloat32 writes z as little-endian float32 (the default, non-quantized
// payload of spec.md section 6).
func writeFloat32(w io.Writer, z []float64) error {
	buf := make([]byte, 4*len(z))
	for i, v := range z {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	_, err := w.Write(buf)
	return err
}

// writeInt8 writes the quantized spectrum as signed bytes (spec.md section
// 6's 8-bit payload).
func writeInt8(w io.Writer, cz []int8) error {
	buf := make([]byte, len(cz))
	for i, v := range cz {
		buf[i] = byte(v)
	}
	_, err := w.Write(buf)
	return err
}
