package synth

import (
	"errors"
	"math"
	"testing"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

var twoPeaks = []core.Peak{
	{MZ: 700.5, Intensity: 100},
	{MZ: 702.5, Intensity: 30},
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name      string
		peaks     []core.Peak
		precursor float64
		isotope   bool
		wantMin   float64
		wantMax   float64
	}{
		{"standard single peak", []core.Peak{{MZ: 700.5, Intensity: 100}}, 600, false, 0, 800},
		{"isotope two peaks", twoPeaks, 600, true, 699.5, 703.5},
		{"standard no peaks", nil, 600, false, 0, 700},
		{"isotope no peaks", nil, 600, true, 599, 601},
		{"standard unordered peaks", []core.Peak{{MZ: 184.07, Intensity: 100}, {MZ: 760.59, Intensity: 20}}, 760.59, false, 0, 860},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax := Bounds(tt.peaks, tt.precursor, tt.isotope)
			if gotMin != tt.wantMin || gotMax != tt.wantMax {
				t.Errorf("Bounds() = (%v, %v), want (%v, %v)", gotMin, gotMax, tt.wantMin, tt.wantMax)
			}
			for _, p := range tt.peaks {
				if p.MZ < gotMin || p.MZ > gotMax {
					t.Errorf("peak %.2f outside [%v, %v]", p.MZ, gotMin, gotMax)
				}
			}
		})
	}
}

func TestSigma(t *testing.T) {
	got := Sigma(700.5, 5000)
	want := 700.5 / (2.355 * 5000)
	if math.Abs(got-want) > 1e-12 || math.Abs(got-0.0595) > 0.0001 {
		t.Errorf("Sigma() = %.6f, want %.6f", got, want)
	}
}

func TestAmplitudeAtPeak(t *testing.T) {
	sigma := Sigma(700.5, 5000)

	if got := core.RoundFloat(Amplitude(twoPeaks, sigma, 700.5), 3); got != 100 {
		t.Errorf("Amplitude(700.5) = %v, want 100", got)
	}
	other := Amplitude(twoPeaks[1:], sigma, 700.5)
	if other > 1e-6 {
		t.Errorf("contribution of 702.5 at 700.5 = %g, want ~0", other)
	}
	if got := core.RoundFloat(Amplitude(twoPeaks, sigma, 702.5), 3); got != 30 {
		t.Errorf("Amplitude(702.5) = %v, want 30", got)
	}
}

func TestCurve(t *testing.T) {
	binMin, binMax := Bounds(twoPeaks, 700.5, true)

	curve, err := Curve(twoPeaks, binMin, binMax, 5000, 5000)
	if err != nil {
		t.Fatalf("Curve() error = %v", err)
	}
	if len(curve) < 3 {
		t.Fatalf("expected sampled points, got %d", len(curve))
	}

	first, last := curve[0], curve[len(curve)-1]
	if first.MZ != binMin || first.Amplitude != AnchorAmplitude {
		t.Errorf("first point = %+v, want anchor at %v", first, binMin)
	}
	if last.MZ != binMax || last.Amplitude != AnchorAmplitude {
		t.Errorf("last point = %+v, want anchor at %v", last, binMax)
	}

	maxAmp := 0.0
	for i, p := range curve[1 : len(curve)-1] {
		if p.Amplitude <= 0 {
			t.Errorf("point %d has non-positive amplitude %v", i+1, p.Amplitude)
		}
		if i > 0 && p.MZ <= curve[i].MZ {
			t.Errorf("points not increasing at %d", i+1)
		}
		if p.Amplitude != core.RoundFloat(p.Amplitude, 3) {
			t.Errorf("amplitude %v not rounded to 3 decimals", p.Amplitude)
		}
		maxAmp = math.Max(maxAmp, p.Amplitude)
	}
	if maxAmp < 99 || maxAmp > 100.001 {
		t.Errorf("max amplitude = %v, want close to 100", maxAmp)
	}
}

func TestCurveInvalidParameters(t *testing.T) {
	tests := []struct {
		name       string
		resolution float64
		density    float64
	}{
		{"zero resolution", 0, 100},
		{"negative resolution", -1, 100},
		{"zero density", 5000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Curve(twoPeaks, 699.5, 703.5, tt.resolution, tt.density); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("Curve() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestCurveNoPeaks(t *testing.T) {
	curve, err := Curve(nil, 0, 700, 5000, 100)
	if err != nil {
		t.Fatalf("Curve() error = %v", err)
	}
	if len(curve) != 2 {
		t.Errorf("expected only anchors, got %d points", len(curve))
	}
}

func TestProfileSynthesize(t *testing.T) {
	p := NewProfile(twoPeaks, 700.5, true)
	if p.Curve != nil {
		t.Fatal("curve should be empty before Synthesize")
	}
	if err := p.Synthesize(5000, 1000); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(p.Curve) == 0 {
		t.Error("expected a curve after Synthesize")
	}
	if err := p.Synthesize(0, 1000); err == nil {
		t.Error("expected error for zero resolution")
	}
}

func TestAutoscale(t *testing.T) {
	tests := []struct {
		name          string
		peaks         []core.Peak
		lo, hi        float64
		wantMaxY      float64
		wantPrecision int
		wantTick      string
	}{
		{"max 40", []core.Peak{{MZ: 500, Intensity: 40}}, 0, 1000, 60, 0, "60"},
		{"max 10", []core.Peak{{MZ: 500, Intensity: 10}}, 0, 1000, 15, 1, "15.0"},
		{"capped", []core.Peak{{MZ: 500, Intensity: 90}}, 0, 1000, 100, 0, "100"},
		{"only visible peaks count", []core.Peak{{MZ: 500, Intensity: 10}, {MZ: 900, Intensity: 100}}, 400, 600, 15, 1, "15.0"},
		{"nothing visible", []core.Peak{{MZ: 900, Intensity: 100}}, 400, 600, 100, 0, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Autoscale(tt.peaks, tt.lo, tt.hi)
			if got.MaxY != tt.wantMaxY || got.Precision != tt.wantPrecision {
				t.Errorf("Autoscale() = %+v, want MaxY %v precision %d", got, tt.wantMaxY, tt.wantPrecision)
			}
			if tick := got.FormatTick(got.MaxY); tick != tt.wantTick {
				t.Errorf("FormatTick() = %s, want %s", tick, tt.wantTick)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	predicted := []core.Peak{
		{MZ: 760.5851, Intensity: 20},
		{MZ: 184.0733, Intensity: 100},
		{MZ: 577.5190, Intensity: 10},
	}
	reference := []core.Peak{
		{MZ: 184.0735, Intensity: 1000},
		{MZ: 760.5860, Intensity: 200},
		{MZ: 300.0000, Intensity: 50},
	}

	cmp := Compare(predicted, reference, 10)
	if got := cmp.MatchedCount(); got != 2 {
		t.Errorf("MatchedCount() = %d, want 2", got)
	}
	if cmp.Matches[2].Matched {
		t.Error("577.519 should not match")
	}
	if math.Abs(cmp.Matches[1].ErrorPPM-1.0865) > 0.01 {
		t.Errorf("ErrorPPM = %.4f, want ~1.09", cmp.Matches[1].ErrorPPM)
	}
	if cmp.Cosine < 0.9 || cmp.Cosine > 1 {
		t.Errorf("Cosine = %.4f, want between 0.9 and 1", cmp.Cosine)
	}

	if same := Compare(predicted, predicted, 1); math.Abs(same.Cosine-1) > 1e-9 {
		t.Errorf("self Cosine = %v, want 1", same.Cosine)
	}
	if empty := Compare(predicted, nil, 10); empty.Cosine != 0 {
		t.Errorf("Cosine against empty reference = %v, want 0", empty.Cosine)
	}
}

func TestCompareCoincidentPredictedPeaks(t *testing.T) {
	predicted := []core.Peak{
		{MZ: 868.8009, Intensity: 5, Annotation: "[M+NH4]+"},
		{MZ: 551.5034, Intensity: 100, Annotation: "[M+NH4-FA1-NH3]+"},
		{MZ: 551.5034, Intensity: 100, Annotation: "[M+NH4-FA2-NH3]+"},
		{MZ: 551.5034, Intensity: 100, Annotation: "[M+NH4-FA3-NH3]+"},
	}
	reference := []core.Peak{
		{MZ: 551.5034, Intensity: 1000},
		{MZ: 868.8009, Intensity: 50},
	}

	cmp := Compare(predicted, reference, 10)
	if math.Abs(cmp.Cosine-1) > 1e-9 {
		t.Errorf("Cosine = %.4f, want 1", cmp.Cosine)
	}
	if len(cmp.Matches) != 2 || cmp.MatchedCount() != 2 {
		t.Errorf("got %d matches (%d matched), want 2 distinct peaks", len(cmp.Matches), cmp.MatchedCount())
	}

	single := Compare(predicted[1:], reference[:1], 10)
	if math.Abs(single.Cosine-1) > 1e-9 {
		t.Errorf("identical-mass Cosine = %.4f, want 1", single.Cosine)
	}
}
