// rftrace synthesizes predicted Doppler tracks for catalog objects and
// identifies which catalog object best matches an observed (time,
// frequency) curve, ported from the original rftrace.c.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lezbar/strf/internal/catalog"
	"github.com/lezbar/strf/internal/config"
	"github.com/lezbar/strf/internal/diagnostics"
	"github.com/lezbar/strf/internal/doppler"
	"github.com/lezbar/strf/internal/skytime"
)

var help []string = []string{
	"rftrace: synthesize or identify Doppler frequency tracks",
	"",
	" usage: rftrace identify  -c tlefile -s site -F obsfile [-g] [-n satno]",
	"        rftrace synthesize -c tlefile -s site -f freq -b bw -F timesfile [-g]",
	"",
	" -c tlefile    two-line element catalog",
	" -s site       site id",
	" -n satno      restrict to a single catalog number [identify]",
	" -f freq       center frequency (Hz) [synthesize]",
	" -b bandwidth  bandwidth (Hz) [synthesize]",
	" -F file       observed trace (identify) or MJD list (synthesize)",
	" -g            bistatic (Graves illuminator) geometry",
	" -h            this help",
}

func printhelp() {
	for _, v := range help {
		fmt.Fprintf(os.Stderr, "%s\n", v)
	}
}

func main() {
	if len(os.Args) < 2 {
		printhelp()
		os.Exit(2)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rftrace: %v\n", err)
		os.Exit(1)
	}
	diag := diagnostics.NewSink(os.Stderr, "warn")

	switch cmd {
	case "identify":
		runIdentify(cfg, diag, args)
	case "synthesize":
		runSynthesize(cfg, diag, args)
	case "-h", "--help", "help":
		printhelp()
	default:
		fmt.Fprintf(os.Stderr, "rftrace: unknown command %q\n", cmd)
		printhelp()
		os.Exit(2)
	}
}

func runIdentify(cfg config.Config, diag *diagnostics.Sink, args []string) {
	fs := flag.NewFlagSet("identify", flag.ExitOnError)
	tlefile := fs.String("c", "", "")
	siteID := fs.Int("s", 0, "")
	obsfile := fs.String("F", "", "")
	satno := fs.Int("n", 0, "")
	bistatic := fs.Bool("g", false, "")
	fs.Parse(args)

	if *tlefile == "" || *siteID == 0 || *obsfile == "" {
		printhelp()
		os.Exit(2)
	}

	observed, err := readObservedTrace(*obsfile, *siteID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rftrace: %v\n", err)
		os.Exit(1)
	}

	var satnoFilter *int
	if *satno != 0 {
		satnoFilter = satno
	}

	ctx := context.Background()
	report, err := doppler.Identify(ctx, cfg, *tlefile, observed, satnoFilter, *bistatic, diag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rftrace: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Fitting trace:")
	for _, c := range report.Candidates {
		fmt.Printf("%05d: %8.3f MHz %8.3f kHz (azi %.1f, alt %.1f)\n",
			c.SatNo, c.Freq0Hz*1e-6, c.RMSHz*1e-3, c.MidAziDeg, c.MidAltDeg)
	}

	if report.Best == nil {
		fmt.Println("\nTrace not identified..")
		return
	}

	best := *report.Best
	fmt.Println("\nBest fitting object:")
	fmt.Printf("%05d: %8.3f MHz %8.3f kHz\n", best.SatNo, best.Freq0Hz*1e-6, best.RMSHz*1e-3)
	fmt.Println("Store frequency? [y/n]")

	if !confirmYes(os.Stdin) {
		return
	}

	ts := time.Now().UTC()
	if best.HasTCA {
		ts = skytime.TimeFromMJD(best.TCAMJD)
	}
	if err := catalog.AppendFrequency(cfg.FrequenciesPath(), best.SatNo, best.Freq0Hz*1e-6, ts, *siteID); err != nil {
		fmt.Fprintf(os.Stderr, "rftrace: %v\n", err)
		os.Exit(1)
	}
	if err := catalog.AppendLog("log.txt", best.SatNo, best.Freq0Hz*1e-6, best.RMSHz*1e-3, skytime.FormatISO(ts)); err != nil {
		fmt.Fprintf(os.Stderr, "rftrace: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Frequency stored")
}

func runSynthesize(cfg config.Config, diag *diagnostics.Sink, args []string) {
	fs := flag.NewFlagSet("synthesize", flag.ExitOnError)
	tlefile := fs.String("c", "", "")
	siteID := fs.Int("s", 0, "")
	freqHz := fs.Float64("f", 0, "")
	bwHz := fs.Float64("b", 0, "")
	timesFile := fs.String("F", "", "")
	bistatic := fs.Bool("g", false, "")
	fs.Parse(args)

	if *tlefile == "" || *siteID == 0 || *timesFile == "" {
		printhelp()
		os.Exit(2)
	}

	mjds, err := readMJDList(*timesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rftrace: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	traces, err := doppler.Synthesize(ctx, cfg, *tlefile, mjds, *siteID, *freqHz, *bwHz, *bistatic, diag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rftrace: %v\n", err)
		os.Exit(1)
	}

	for _, t := range traces {
		for i := 0; i < t.N(); i++ {
			fmt.Printf("%05d %s %.3f %.1f\n", t.SatNo, skytime.FormatISO(skytime.TimeFromMJD(t.MJD[i])), t.Freq[i], t.ZA[i])
		}
	}
}

func confirmYes(r *os.File) bool {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

func readObservedTrace(path string, siteID int) (doppler.ObservedTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return doppler.ObservedTrace{}, err
	}
	defer f.Close()

	var t doppler.ObservedTrace
	t.SiteID = siteID
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		mjd, err1 := strconv.ParseFloat(fields[0], 64)
		freq, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		t.MJD = append(t.MJD, mjd)
		t.FreqHz = append(t.FreqHz, freq)
	}
	return t, sc.Err()
}

func readMJDList(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mjds []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 1 {
			continue
		}
		mjd, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		mjds = append(mjds, mjd)
	}
	return mjds, sc.Err()
}
