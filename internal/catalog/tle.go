package catalog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lezbar/strf/internal/sgp4"
)

// TLEReader is a single-pass, forward-only iterator over a NORAD two- or
// three-line element file. The file is closed automatically on exhaustion
// or on an explicit Close (spec.md section 4.2 lifecycle note). Comment text
// after '#' on a line is ignored, matching the teacher's tle_read.
type TLEReader struct {
	f        *os.File
	sc       *bufio.Scanner
	satno    int
	haveAll  bool
	pendLine string
	closed   bool
}

// OpenTLEReader opens path for a forward scan. If satnoFilter is non-nil,
// only TLEs for that satellite number are yielded.
func OpenTLEReader(path string, satnoFilter *int) (*TLEReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening TLE file %s: %w", path, err)
	}
	r := &TLEReader{f: f, sc: bufio.NewScanner(f), haveAll: satnoFilter == nil}
	if satnoFilter != nil {
		r.satno = *satnoFilter
	}
	return r, nil
}

// Close releases the underlying file handle. Safe to call more than once.
func (r *TLEReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.f.Close()
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, " \t\r\n")
}

// Next advances to the next matching TLE and returns its parsed elements.
// It returns io.EOF (and closes the file) when the stream is exhausted.
func (r *TLEReader) Next() (sgp4.Elements, error) {
	var line1 string
	for {
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				r.Close()
				return sgp4.Elements{}, fmt.Errorf("catalog: reading TLE file: %w", err)
			}
			r.Close()
			return sgp4.Elements{}, io.EOF
		}
		line := stripComment(r.sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "1 ") || (len(line) > 0 && line[0] == '1') {
			line1 = line
			continue
		}
		if line1 != "" && (strings.HasPrefix(line, "2 ") || (len(line) > 0 && line[0] == '2')) {
			el, err := sgp4.Parse(line1, line)
			line1 = ""
			if err != nil {
				continue
			}
			if !r.haveAll && el.SatNo != r.satno {
				continue
			}
			return el, nil
		}
		// Otherwise: a name line in three-line format, ignored — callers
		// identify objects by catalog number, not display name.
		line1 = ""
	}
}

// ReadAll drains the reader and returns every matching element set,
// preserving file order. Used where the caller needs to select "the latest
// matching TLE wins" (spec.md section 4.3/9).
func ReadAll(path string, satnoFilter *int) ([]sgp4.Elements, error) {
	r, err := OpenTLEReader(path, satnoFilter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []sgp4.Elements
	for {
		el, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, el)
	}
	return out, nil
}
