// Package msp provides streaming readers for MSP (NIST/MS-DIAL) format
// lipid spectral libraries
package msp

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// ionChargePattern reads the charge off an adduct notation such as [M+2H]2+
var ionChargePattern = regexp.MustCompile(`\](\d*)([+-])$`)

// Reader provides streaming access to MSP format files
type Reader struct {
	scanner     *bufio.Scanner
	lineNum     int
	currentSpec *core.Spectrum
	err         error
}

// NewReader creates a new MSP reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner}
}

// Next advances to the next spectrum. Returns false when no more spectra or error.
func (r *Reader) Next() bool {
	r.currentSpec = nil

	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.currentSpec = spec
	return true
}

// Spectrum returns the current spectrum
func (r *Reader) Spectrum() *core.Spectrum {
	return r.currentSpec
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll collects every remaining spectrum
func (r *Reader) ReadAll() ([]*core.Spectrum, error) {
	var out []*core.Spectrum
	for r.Next() {
		out = append(out, r.Spectrum())
	}
	return out, r.Err()
}

// readSpectrum reads a single entry. An entry ends after its declared number
// of peaks or at a blank line, whichever comes first.
func (r *Reader) readSpectrum() (*core.Spectrum, error) {
	spec := &core.Spectrum{
		SourceFormat: "msp",
		Peaks:        []core.Peak{},
	}

	started := false
	inPeaks := false
	numPeaks, peaksRead := 0, 0

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" {
			if started {
				return r.finish(spec)
			}
			continue
		}
		started = true

		if inPeaks {
			peak, err := parsePeak(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			spec.Peaks = append(spec.Peaks, peak)
			peaksRead++
			if peaksRead >= numPeaks {
				return r.finish(spec)
			}
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected 'key: value', got '%s'", r.lineNum, line)
		}
		value = strings.TrimSpace(value)

		switch normalizeKey(key) {
		case "name":
			spec.Name = value
		case "precursormz":
			mz, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid precursor m/z: %w", r.lineNum, err)
			}
			spec.PrecursorMZ = mz
		case "precursortype", "adduct":
			spec.PrecursorType = value
			if spec.Charge == 0 {
				spec.Charge = chargeFromIon(value)
			}
		case "charge":
			charge, err := parseCharge(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			spec.Charge = charge
		case "formula":
			spec.Formula = value
		case "compoundclass", "ontology":
			spec.CompoundClass = value
		case "instrument", "instrumenttype":
			spec.Instrument = value
		case "comment", "comments":
			spec.Comment = value
		case "numpeaks":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid num peaks: %w", r.lineNum, err)
			}
			numPeaks = n
			inPeaks = true
			if numPeaks == 0 {
				return r.finish(spec)
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// A partially read entry at end of input is still returned
	if started {
		return r.finish(spec)
	}

	return nil, io.EOF
}

func (r *Reader) finish(spec *core.Spectrum) (*core.Spectrum, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("line %d: entry without Name", r.lineNum)
	}
	spec.SortPeaks()
	return spec, nil
}

// normalizeKey folds MSP header spellings (PRECURSORTYPE, Precursor_type,
// Num Peaks) onto one form
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("_", "", " ", "").Replace(key)
}

// chargeFromIon derives the signed charge from an adduct notation; 0 when it
// cannot be read
func chargeFromIon(ion string) int {
	m := ionChargePattern.FindStringSubmatch(strings.TrimSpace(ion))
	if m == nil {
		return 0
	}
	n := 1
	if m[1] != "" {
		n, _ = strconv.Atoi(m[1])
	}
	if m[2] == "-" {
		return -n
	}
	return n
}

// parseCharge accepts "1", "-1", "2+" and "1-"
func parseCharge(value string) (int, error) {
	sign := 1
	switch {
	case strings.HasSuffix(value, "+"):
		value = strings.TrimSuffix(value, "+")
	case strings.HasSuffix(value, "-"):
		value = strings.TrimSuffix(value, "-")
		sign = -1
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid charge '%s': %w", value, err)
	}
	return sign * n, nil
}

// parsePeak parses a single peak line (format: "mz intensity [\"annotation\"]")
func parsePeak(line string) (core.Peak, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return core.Peak{}, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}

	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid m/z value: %w", err)
	}

	intensity, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return core.Peak{}, fmt.Errorf("invalid intensity value: %w", err)
	}

	peak := core.Peak{
		MZ:        mz,
		Intensity: intensity,
	}

	// Annotations may be quoted and contain spaces
	if start := strings.Index(line, "\""); start >= 0 {
		if end := strings.LastIndex(line, "\""); end > start {
			peak.Annotation = line[start+1 : end]
		}
	} else if len(fields) >= 3 {
		peak.Annotation = strings.Join(fields[2:], " ")
	}

	return peak, nil
}
