// Package filter provides peak filtering applied when preview spectra leave
// the editable session
package filter

import (
	"sort"
	"strings"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// Config holds filtering configuration
type Config struct {
	TopN            int      // Keep only top N most intense peaks (0 = no limit)
	IntensityCutoff float64  // Keep only peaks above this % of base peak (0 = no cutoff)
	FragmentTypes   []string // Keep only fragment types with these prefixes (nil = all)
}

// Apply applies the generation rule and all configured filters to a spectrum
func (c *Config) Apply(spec *core.Spectrum) {
	// Zero-intensity fragments never reach generated output
	RemoveZeroIntensityPeaks(spec)

	if len(c.FragmentTypes) > 0 {
		c.filterByFragmentType(spec)
	}

	// Apply intensity filters
	if c.IntensityCutoff > 0 {
		c.filterByIntensity(spec)
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(spec)
	}

	// Ensure peaks are sorted after all filtering
	spec.SortPeaks()
}

// filterByFragmentType keeps only peaks whose annotation matches a configured prefix
func (c *Config) filterByFragmentType(spec *core.Spectrum) {
	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if matchesFragmentType(peak.Annotation, c.FragmentTypes) {
			filtered = append(filtered, peak)
		}
	}
	spec.Peaks = filtered
}

// matchesFragmentType checks if an annotation matches any of the allowed types
func matchesFragmentType(annotation string, types []string) bool {
	if annotation == "" {
		return false
	}

	for _, t := range types {
		// Match at start of annotation (e.g. "FA" for "FA1-", "HG" for "HG 184")
		if strings.HasPrefix(annotation, t) {
			return true
		}
	}
	return false
}

// filterByIntensity removes peaks below the intensity cutoff percentage
func (c *Config) filterByIntensity(spec *core.Spectrum) {
	base, ok := spec.BasePeak()
	if !ok {
		return
	}

	// Calculate threshold
	threshold := (c.IntensityCutoff / 100.0) * base.Intensity

	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if peak.Intensity >= threshold {
			filtered = append(filtered, peak)
		}
	}

	spec.Peaks = filtered
}

// filterTopN keeps only the N most intense peaks
func (c *Config) filterTopN(spec *core.Spectrum) {
	if len(spec.Peaks) <= c.TopN {
		return
	}

	// Create a copy and sort by intensity descending
	peaks := make([]core.Peak, len(spec.Peaks))
	copy(peaks, spec.Peaks)

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].Intensity > peaks[j].Intensity
	})

	spec.Peaks = peaks[:c.TopN]
}

// RemoveZeroIntensityPeaks removes peaks with zero or negative intensity
func RemoveZeroIntensityPeaks(spec *core.Spectrum) {
	var filtered []core.Peak
	for _, peak := range spec.Peaks {
		if peak.Intensity > 0 {
			filtered = append(filtered, peak)
		}
	}
	spec.Peaks = filtered
}

// GeneratedFragments returns the fragments that survive library generation.
// The input is not modified, so preview lists keep their zero entries.
func GeneratedFragments(fragments []core.FragmentEntry) []core.FragmentEntry {
	out := make([]core.FragmentEntry, 0, len(fragments))
	for _, f := range fragments {
		if f.Generated() {
			out = append(out, f)
		}
	}
	return out
}
