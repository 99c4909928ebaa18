package spectrometer

import "fmt"

// headerSize is the fixed, NUL-padded size of every spectrum frame header
// (spec.md section 3/6).
const headerSize = 256

// buildHeader renders the 256-byte ASCII header for one spectrum frame. In
// 8-bit mode, NBITS/MEAN/RMS are inserted between NSUB and END exactly as
// spec.md section 6 specifies.
func buildHeader(utcStart string, freqHz, bwHz, lengthSec float64, nchan, nsub int, eightBit bool, mean, rms float64) []byte {
	var body string
	if !eightBit {
		body = fmt.Sprintf(
			"HEADER\nUTC_START    %s\nFREQ         %f Hz\nBW           %f Hz\nLENGTH       %f s\nNCHAN        %d\nNSUB         %d\nEND\n",
			utcStart, freqHz, bwHz, lengthSec, nchan, nsub)
	} else {
		body = fmt.Sprintf(
			"HEADER\nUTC_START    %s\nFREQ         %f Hz\nBW           %f Hz\nLENGTH       %f s\nNCHAN        %d\nNSUB         %d\nNBITS         8\nMEAN         %e\nRMS          %e\nEND\n",
			utcStart, freqHz, bwHz, lengthSec, nchan, nsub, mean, rms)
	}

	buf := make([]byte, headerSize)
	copy(buf, body)
	return buf
}
