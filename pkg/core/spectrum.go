// Package core provides the models and validation logic for lipid structures
// and spectra used by LipidKey.
package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// MaxIntensity is the top of the relative intensity scale.
	MaxIntensity = 100
	// CoincidenceTolerance is the ppm window within which two peaks are the
	// same ion, e.g. tail losses of identical tails.
	CoincidenceTolerance = 1.0
)

// Spectrum represents a single mass spectrum with its precursor metadata.
type Spectrum struct {
	// Required fields
	Name          string  // Lipid name, e.g. "PC 16:0_18:1"
	PrecursorType string  // Adduct name, e.g. "[M+H]+"
	PrecursorMZ   float64 // Precursor m/z
	Charge        int     // Signed precursor charge
	Peaks         []Peak  // Fragment peaks

	// Optional metadata
	Formula       string
	CompoundClass string
	Instrument    string
	Comment       string

	// Internal tracking
	SourceFile   string
	SourceFormat string // msp, preview
}

// Peak represents a single m/z, intensity pair with optional metadata.
type Peak struct {
	MZ         float64
	Intensity  float64
	Annotation string // Fragment type key (e.g. "[M+H]+", "HG 184")
}

// FragmentEntry is a resolved fragment of a lipid structure for one adduct.
// Type is the identity key.
type FragmentEntry struct {
	Type      string
	MZ        float64
	Intensity int // relative, 0..100
	Comment   string
}

// Generated reports whether the fragment survives library generation.
// Zero-intensity fragments stay in the preview so they remain editable, but
// are dropped from generated output.
func (f FragmentEntry) Generated() bool {
	return f.Intensity > 0
}

// Peak converts the fragment into a display peak.
func (f FragmentEntry) Peak() Peak {
	return Peak{MZ: f.MZ, Intensity: float64(f.Intensity), Annotation: f.Type}
}

// ValidIntensity reports whether v is on the relative intensity scale.
func ValidIntensity(v int) bool {
	return v >= 0 && v <= MaxIntensity
}

// ValidationError represents an error found during spectrum validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a spectrum meets all requirements for processing.
func (s *Spectrum) Validate() error {
	var errs []string

	// Required fields
	if s.Name == "" {
		errs = append(errs, "name is required")
	}
	if s.Charge == 0 {
		errs = append(errs, "charge must be non-zero")
	}
	if s.PrecursorMZ <= 0 {
		errs = append(errs, "precursor m/z must be positive")
	}
	if len(s.Peaks) == 0 {
		errs = append(errs, "at least one peak is required")
	}

	// Validate peaks
	for i, peak := range s.Peaks {
		if math.IsNaN(peak.MZ) || math.IsInf(peak.MZ, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid m/z", i))
		}
		if math.IsNaN(peak.Intensity) || math.IsInf(peak.Intensity, 0) {
			errs = append(errs, fmt.Sprintf("peak %d has invalid intensity", i))
		}
		if peak.MZ <= 0 {
			errs = append(errs, fmt.Sprintf("peak %d m/z must be positive", i))
		}
		if peak.Intensity < 0 {
			errs = append(errs, fmt.Sprintf("peak %d intensity must be non-negative", i))
		}
	}

	// Check if peaks are sorted
	if !s.ArePeaksSorted() {
		errs = append(errs, "peaks must be sorted by m/z")
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Spectrum",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// ArePeaksSorted checks if peaks are sorted by m/z in ascending order.
func (s *Spectrum) ArePeaksSorted() bool {
	for i := 1; i < len(s.Peaks); i++ {
		if s.Peaks[i].MZ < s.Peaks[i-1].MZ {
			return false
		}
	}
	return true
}

// SortPeaks sorts peaks by m/z in ascending order.
func (s *Spectrum) SortPeaks() {
	sort.SliceStable(s.Peaks, func(i, j int) bool {
		return s.Peaks[i].MZ < s.Peaks[j].MZ
	})
}

// MergePeaks collapses peaks whose m/z lie within tolPPM of an earlier peak
// into that peak, keeping the higher intensity and joining the annotations
// with "/". Peaks keep their first-appearance order; the input is not
// modified.
func MergePeaks(peaks []Peak, tolPPM float64) []Peak {
	merged := make([]Peak, 0, len(peaks))
	for _, p := range peaks {
		i := coincident(merged, p.MZ, tolPPM)
		if i < 0 {
			merged = append(merged, p)
			continue
		}
		m := &merged[i]
		m.Intensity = math.Max(m.Intensity, p.Intensity)
		switch {
		case p.Annotation == "":
		case m.Annotation == "":
			m.Annotation = p.Annotation
		default:
			m.Annotation += "/" + p.Annotation
		}
	}
	return merged
}

func coincident(peaks []Peak, mz, tolPPM float64) int {
	for i, p := range peaks {
		if math.Abs(p.MZ-mz) <= p.MZ*tolPPM*1e-6 {
			return i
		}
	}
	return -1
}

// BasePeak returns the most intense peak, or false for an empty spectrum.
func (s *Spectrum) BasePeak() (Peak, bool) {
	if len(s.Peaks) == 0 {
		return Peak{}, false
	}
	best := s.Peaks[0]
	for _, p := range s.Peaks[1:] {
		if p.Intensity > best.Intensity {
			best = p
		}
	}
	return best, true
}

// Label returns the spectrum label in format "Name PrecursorType"
func (s *Spectrum) Label() string {
	if s.PrecursorType == "" {
		return s.Name
	}
	return fmt.Sprintf("%s %s", s.Name, s.PrecursorType)
}
