// rffft FFTs a stream of complex baseband samples into averaged power
// spectra, ported from the original rffft.c.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lezbar/strf/internal/diagnostics"
	"github.com/lezbar/strf/internal/spectrometer"
)

var help []string = []string{
	"rffft: FFT RF observations",
	"",
	" -i file       input file (can be a fifo)",
	" -p dir        output directory",
	" -f frequency  center frequency (Hz)",
	" -s samprate   sample rate (Hz)",
	" -c chansize   channel size [100Hz]",
	" -t tint       integration time [1s]",
	" -n nsub       number of integrations per file [60]",
	" -m use        use every mth integration [1]",
	" -F format     input format char, int, float [int]",
	" -T starttime  YYYY-MM-DDTHH:MM:SS.sss",
	" -b            digitize output to bytes [off]",
	" -q            quiet mode, no output [off]",
	" -h            this help",
}

func searchHelp(key string) string {
	for _, v := range help {
		if strings.Index(v, key) >= 0 {
			return v
		}
	}
	return ""
}

func printhelp() {
	for _, v := range help {
		fmt.Fprintf(os.Stderr, "%s\n", v)
	}
}

func main() {
	var (
		infile, outdir, format, startStr string
		freqHz, sampHz, chanHz, tint      float64
		nsub, nuse                        int
		eightBit, quiet, showHelp         bool
	)
	chanHz = 100.0
	tint = 1.0
	nsub = 60
	nuse = 1
	format = "int"

	flag.StringVar(&infile, "i", infile, searchHelp("-i"))
	flag.StringVar(&outdir, "p", outdir, searchHelp("-p"))
	flag.Float64Var(&freqHz, "f", freqHz, searchHelp("-f"))
	flag.Float64Var(&sampHz, "s", sampHz, searchHelp("-s"))
	flag.Float64Var(&chanHz, "c", chanHz, searchHelp("-c"))
	flag.Float64Var(&tint, "t", tint, searchHelp("-t"))
	flag.IntVar(&nsub, "n", nsub, searchHelp("-n"))
	flag.IntVar(&nuse, "m", nuse, searchHelp("-m"))
	flag.StringVar(&format, "F", format, searchHelp("-F"))
	flag.StringVar(&startStr, "T", startStr, searchHelp("-T"))
	flag.BoolVar(&eightBit, "b", eightBit, searchHelp("-b"))
	flag.BoolVar(&quiet, "q", quiet, searchHelp("-q"))
	flag.BoolVar(&showHelp, "h", showHelp, searchHelp("-h"))
	flag.Usage = printhelp
	flag.Parse()

	if showHelp {
		printhelp()
		os.Exit(0)
	}
	if infile == "" || outdir == "" || freqHz == 0 || sampHz == 0 {
		fmt.Fprintln(os.Stderr, "rffft: -i, -p, -f and -s are required")
		printhelp()
		os.Exit(1)
	}

	sampleFormat, ok := spectrometer.ParseFormat(format)
	if !ok {
		fmt.Fprintf(os.Stderr, "rffft: unrecognized -F format %q\n", format)
		os.Exit(1)
	}

	var scheduled *time.Time
	if startStr != "" {
		t, err := time.Parse("2006-01-02T15:04:05.000", startStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rffft: malformed -T start time: %v\n", err)
			os.Exit(1)
		}
		scheduled = &t
	}

	diag := diagnostics.NewSink(os.Stderr, "warn")

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	cfg := spectrometer.Config{
		InputPath:      infile,
		OutputDir:      outdir,
		CenterFreqHz:   freqHz,
		SampleRateHz:   sampHz,
		ChannelSzHz:    chanHz,
		IntegTimeSec:   tint,
		NSub:           nsub,
		Decimation:     nuse,
		InputFormat:    sampleFormat,
		EightBit:       eightBit,
		ScheduledStart: scheduled,
		Quiet:          quiet,
		Status:         os.Stdout,
		Diag:           diag,
	}

	if err := spectrometer.Run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "rffft: %v\n", err)
		os.Exit(1)
	}
}
