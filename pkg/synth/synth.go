// Package synth computes display bounds for a fragment spectrum and
// synthesizes a resolution-broadened profile curve from its discrete peaks.
package synth

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

const (
	// FWHMFactor converts a full width at half maximum to a Gaussian sigma.
	FWHMFactor = 2.355
	// AnchorAmplitude closes the curve at both bin edges.
	AnchorAmplitude = 0.001
	// samplesPerUnit scales the sampling density to samples per m/z unit.
	samplesPerUnit = 50.0
	// standardMargin is added past the precursor region in standard mode.
	standardMargin = 100.0
	// isotopeMargin pads the peak range in isotope mode.
	isotopeMargin = 1.0
)

// ErrInvalidParameter is returned for non-positive resolution or density.
var ErrInvalidParameter = errors.New("invalid parameter")

// Point is one sample of a synthesized curve.
type Point struct {
	MZ        float64
	Amplitude float64
}

// Profile is the display payload for one preview. It is recomputed whenever
// the selection or an intensity changes.
type Profile struct {
	Peaks  []core.Peak
	BinMin float64
	BinMax float64
	Curve  []Point // nil until Synthesize is called
}

// Bounds computes the x-range that contains every peak. In isotope mode the
// range hugs the peaks with one unit of margin; otherwise it starts at zero
// and ends 100 units past the largest peak, not the first one, so unordered
// peak lists stay in range. Without peaks the precursor mass stands in.
func Bounds(peaks []core.Peak, precursorMZ float64, isotope bool) (binMin, binMax float64) {
	if len(peaks) == 0 {
		if isotope {
			return precursorMZ - isotopeMargin, precursorMZ + isotopeMargin
		}
		return 0, precursorMZ + standardMargin
	}

	lo, hi := peaks[0].MZ, peaks[0].MZ
	for _, p := range peaks[1:] {
		lo = math.Min(lo, p.MZ)
		hi = math.Max(hi, p.MZ)
	}

	if isotope {
		return lo - isotopeMargin, hi + isotopeMargin
	}
	return 0, math.Floor(hi) + standardMargin
}

// NewProfile builds the discrete profile for peaks.
func NewProfile(peaks []core.Peak, precursorMZ float64, isotope bool) *Profile {
	binMin, binMax := Bounds(peaks, precursorMZ, isotope)
	return &Profile{Peaks: peaks, BinMin: binMin, BinMax: binMax}
}

// Synthesize fills p.Curve for the given resolving power and sampling density.
func (p *Profile) Synthesize(resolution, density float64) error {
	curve, err := Curve(p.Peaks, p.BinMin, p.BinMax, resolution, density)
	if err != nil {
		return err
	}
	p.Curve = curve
	return nil
}

// Sigma returns the Gaussian standard deviation for a peak at mz measured
// with resolving power resolution.
func Sigma(mz, resolution float64) float64 {
	return mz / (FWHMFactor * resolution)
}

// Amplitude sums the Gaussian contribution of every peak at x.
func Amplitude(peaks []core.Peak, sigma, x float64) float64 {
	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for _, p := range peaks {
		d := x - p.MZ
		sum += p.Intensity * math.Exp(-d*d/twoSigmaSq)
	}
	return sum
}

// Curve broadens peaks into a continuous profile. Sigma is derived from the
// first peak. Samples cover [floor(binMin), ceil(binMax)]; only samples with a
// positive amplitude (rounded to 3 decimals) are kept, bracketed by anchor
// points at binMin and binMax.
func Curve(peaks []core.Peak, binMin, binMax, resolution, density float64) ([]Point, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("resolution %g: %w", resolution, ErrInvalidParameter)
	}
	if density <= 0 {
		return nil, fmt.Errorf("sampling density %g: %w", density, ErrInvalidParameter)
	}

	curve := []Point{{MZ: binMin, Amplitude: AnchorAmplitude}}
	if len(peaks) == 0 {
		return append(curve, Point{MZ: binMax, Amplitude: AnchorAmplitude}), nil
	}

	sigma := Sigma(peaks[0].MZ, resolution)
	if sigma <= 0 {
		return nil, fmt.Errorf("sigma %g from first peak m/z %g: %w", sigma, peaks[0].MZ, ErrInvalidParameter)
	}

	lo, hi := math.Floor(binMin), math.Ceil(binMax)
	steps := int((hi - lo) * (density / samplesPerUnit))
	if steps < 2 {
		steps = 2
	}
	step := (hi - lo) / float64(steps-1)

	for i := 0; i < steps; i++ {
		x := lo + float64(i)*step
		amp := core.RoundFloat(Amplitude(peaks, sigma, x), 3)
		if amp > 0 {
			curve = append(curve, Point{MZ: x, Amplitude: amp})
		}
	}

	return append(curve, Point{MZ: binMax, Amplitude: AnchorAmplitude}), nil
}

// Scale is the y-axis setting for a visible x-range.
type Scale struct {
	MaxY      float64
	Precision int // decimals shown on tick labels
}

// Autoscale fits the y-axis to the peaks inside [lo, hi]: 1.5 times the
// tallest visible peak, capped at 100. Below 50 labels get one decimal. With
// no visible peaks the full scale is used.
func Autoscale(peaks []core.Peak, lo, hi float64) Scale {
	maxVisible := 0.0
	found := false
	for _, p := range peaks {
		if p.MZ < lo || p.MZ > hi {
			continue
		}
		found = true
		maxVisible = math.Max(maxVisible, p.Intensity)
	}
	if !found {
		return Scale{MaxY: core.MaxIntensity}
	}

	maxY := math.Min(math.Ceil(1.5*maxVisible), core.MaxIntensity)
	precision := 0
	if maxY < 50 {
		precision = 1
	}
	return Scale{MaxY: maxY, Precision: precision}
}

// FormatTick renders an axis label with the scale's precision.
func (s Scale) FormatTick(v float64) string {
	return strconv.FormatFloat(v, 'f', s.Precision, 64)
}
