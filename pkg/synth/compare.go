package synth

import (
	"math"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// Match pairs a predicted peak with the closest reference peak within
// tolerance. Reference is the zero Peak when nothing matched.
type Match struct {
	Predicted core.Peak
	Reference core.Peak
	Matched   bool
	ErrorPPM  float64
}

// Comparison summarizes how well a predicted spectrum explains a reference.
type Comparison struct {
	Matches []Match
	Cosine  float64 // 0..1 over intensities scaled to each base peak
}

// MatchedCount returns the number of predicted peaks found in the reference.
func (c *Comparison) MatchedCount() int {
	n := 0
	for _, m := range c.Matches {
		if m.Matched {
			n++
		}
	}
	return n
}

// Compare matches every predicted peak against reference within tolPPM and
// computes the cosine similarity of the two spectra. Coincident predicted
// peaks are merged first, so Matches holds one entry per distinct m/z.
// Reference peaks that no predicted peak claims still count toward the
// reference norm.
func Compare(predicted, reference []core.Peak, tolPPM float64) *Comparison {
	predicted = core.MergePeaks(predicted, core.CoincidenceTolerance)
	refBase := basePeakIntensity(reference)
	predBase := basePeakIntensity(predicted)

	cmp := &Comparison{Matches: make([]Match, 0, len(predicted))}
	claimed := make(map[int]bool)

	var dot, predNorm float64
	for _, p := range predicted {
		m := Match{Predicted: p}
		best := -1
		bestErr := math.Inf(1)
		for j, r := range reference {
			errPPM := (r.MZ - p.MZ) / p.MZ * 1e6
			if math.Abs(errPPM) <= tolPPM && math.Abs(errPPM) < math.Abs(bestErr) {
				best, bestErr = j, errPPM
			}
		}

		pi := scaled(p.Intensity, predBase)
		predNorm += pi * pi
		if best >= 0 {
			m.Reference = reference[best]
			m.Matched = true
			m.ErrorPPM = bestErr
			if !claimed[best] {
				claimed[best] = true
				dot += pi * scaled(reference[best].Intensity, refBase)
			}
		}
		cmp.Matches = append(cmp.Matches, m)
	}

	var refNorm float64
	for _, r := range reference {
		ri := scaled(r.Intensity, refBase)
		refNorm += ri * ri
	}

	if predNorm > 0 && refNorm > 0 {
		cmp.Cosine = dot / (math.Sqrt(predNorm) * math.Sqrt(refNorm))
	}
	return cmp
}

func basePeakIntensity(peaks []core.Peak) float64 {
	spec := core.Spectrum{Peaks: peaks}
	base, ok := spec.BasePeak()
	if !ok {
		return 0
	}
	return base.Intensity
}

func scaled(v, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return v / base * core.MaxIntensity
}
