// Package spectrometer implements the streaming windowed-FFT power
// spectrometer: it reads blocks of complex baseband samples, windows and
// transforms them, accumulates power across a subintegration, optionally
// quantizes to 8 bits, and writes fixed-shape spectrum frames to rotating
// output files. Grounded on the original rffft.c main loop and on the
// teacher's stream.go discipline of releasing every opened handle on every
// exit path.
package spectrometer

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/lezbar/strf/internal/diagnostics"
	"github.com/lezbar/strf/internal/skytime"
)

// Config carries every spectrometer run parameter (spec.md section 4.5/6).
type Config struct {
	InputPath    string
	OutputDir    string
	OutputPrefix string // user-supplied identifier; empty means UTC start time

	CenterFreqHz float64
	SampleRateHz float64
	ChannelSzHz  float64 // df, default 100
	IntegTimeSec float64 // tau, default 1
	NSub         int     // default 60
	Decimation   int     // nuse, default 1

	InputFormat Format
	EightBit    bool

	ScheduledStart *time.Time // nil => realtime mode

	Quiet  bool
	Status io.Writer // status lines (suppressed when Quiet)
	Diag   *diagnostics.Sink
}

func (c Config) nchan() int {
	return int(c.SampleRateHz / c.ChannelSzHz)
}

func (c Config) nint() int {
	nchan := c.nchan()
	return int(c.IntegTimeSec * c.SampleRateHz / float64(nchan))
}

// hammingWindow returns the length-n Hamming window of spec.md section 4.5.
func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2.0*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Run drives the full spectrometer main loop until the input stream signals
// EOF (short read) or ctx is cancelled. A clean EOF is not an error
// (spec.md section 7 kind 3).
func Run(ctx context.Context, cfg Config) error {
	diag := cfg.Diag
	if diag == nil {
		diag = diagnostics.Discard
	}
	status := cfg.Status
	if cfg.Quiet || status == nil {
		status = io.Discard
	}

	nchan := cfg.nchan()
	nint := cfg.nint()
	if nchan <= 1 || nint <= 0 {
		return fmt.Errorf("spectrometer: degenerate configuration (nchan=%d, nint=%d)", nchan, nint)
	}

	in, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("spectrometer: opening input %s: %w", cfg.InputPath, err)
	}
	defer in.Close()

	window := hammingWindow(nchan)
	reader := NewSampleReader(cfg.InputFormat, nchan)
	fft := fourier.NewCmplxFFT(nchan)

	src := make([]complex128, nchan)
	dst := make([]complex128, nchan)
	z := make([]float64, nchan)
	cz := make([]int8, nchan)

	prefix := cfg.OutputPrefix
	var startMJD float64
	realtime := cfg.ScheduledStart == nil
	if !realtime {
		startMJD = skytime.MJDFromTime(*cfg.ScheduledStart)
		if prefix == "" {
			prefix = skytime.FormatISOSeconds(*cfg.ScheduledStart)
		}
	} else if prefix == "" {
		prefix = skytime.FormatISOSeconds(time.Now().UTC())
	}

	shortRead := false
	for m := 0; !shortRead; m++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		outPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%06d.bin", prefix, m))
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("spectrometer: creating output %s: %w", outPath, err)
		}

		for k := 0; k < cfg.NSub && !shortRead; k++ {
			for i := range z {
				z[i] = 0
			}
			tStart := time.Now()

			for j := 0; j < nint; j++ {
				n, rerr := reader.readBlock(in, src, window)
				if n < nchan {
					shortRead = true
					if rerr != nil && rerr != io.EOF {
						diag.Warnf("spectrometer: read error: %v", rerr)
					}
					break
				}
				if j%cfg.Decimation != 0 {
					continue
				}

				dst = fft.Coefficients(dst, src)
				for i, c := range dst {
					l := i + nchan/2
					if i >= nchan/2 {
						l = i - nchan/2
					}
					re, im := real(c), imag(c)
					z[l] += re*re + im*im
				}
			}

			lengthSec := time.Since(tStart).Seconds()
			scale := float64(cfg.Decimation) / float64(nchan)
			for i := range z {
				z[i] *= scale
			}

			var mean, rms float64
			if cfg.EightBit {
				mean = stat.Mean(z, nil)
				rms = stat.StdDev(z, nil)
				for i, v := range z {
					q := (256.0 / 6.0) * (v - mean) / rms
					if q < -128 {
						q = -128
					} else if q > 127 {
						q = 127
					}
					cz[i] = int8(q)
				}
			}

			var utcStart string
			if realtime {
				utcStart = skytime.FormatISO(tStart.UTC())
			} else {
				idx := float64(m*cfg.NSub + k)
				ts := skytime.TimeFromMJD(startMJD + idx*cfg.IntegTimeSec/86400.0)
				utcStart = skytime.FormatISO(ts)
				lengthSec = cfg.IntegTimeSec
			}

			header := buildHeader(utcStart, cfg.CenterFreqHz, cfg.SampleRateHz, lengthSec, nchan, cfg.NSub, cfg.EightBit, mean, rms)

			fmt.Fprintf(status, "%s %s %f %d\n", outPath, utcStart, lengthSec, nint)

			if _, err := out.Write(header); err != nil {
				out.Close()
				return fmt.Errorf("spectrometer: writing header to %s: %w", outPath, err)
			}
			if cfg.EightBit {
				if err := writeInt8(out, cz); err != nil {
					out.Close()
					return fmt.Errorf("spectrometer: writing payload to %s: %w", outPath, err)
				}
			} else {
				if err := writeFloat32(out, z); err != nil {
					out.Close()
					return fmt.Errorf("spectrometer: writing payload to %s: %w", outPath, err)
				}
			}
		}

		if err := out.Close(); err != nil {
			return fmt.Errorf("spectrometer: closing output %s: %w", outPath, err)
		}
	}
	return nil
}
