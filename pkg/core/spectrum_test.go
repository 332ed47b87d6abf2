package core

import (
	"math"
	"testing"
)

func TestSpectrumValidation(t *testing.T) {
	tests := []struct {
		name    string
		spec    *Spectrum
		wantErr bool
	}{
		{
			name: "valid spectrum",
			spec: &Spectrum{
				Name:          "PC 16:0_18:1",
				PrecursorType: "[M+H]+",
				PrecursorMZ:   760.585,
				Charge:        1,
				Peaks: []Peak{
					{MZ: 184.073, Intensity: 100.0},
					{MZ: 760.585, Intensity: 20.0},
				},
			},
			wantErr: false,
		},
		{
			name: "missing name",
			spec: &Spectrum{
				PrecursorMZ: 760.585,
				Charge:      1,
				Peaks:       []Peak{{MZ: 184.073, Intensity: 100.0}},
			},
			wantErr: true,
		},
		{
			name: "zero charge",
			spec: &Spectrum{
				Name:        "PC 16:0_18:1",
				PrecursorMZ: 760.585,
				Peaks:       []Peak{{MZ: 184.073, Intensity: 100.0}},
			},
			wantErr: true,
		},
		{
			name: "no peaks",
			spec: &Spectrum{
				Name:        "PC 16:0_18:1",
				PrecursorMZ: 760.585,
				Charge:      1,
				Peaks:       []Peak{},
			},
			wantErr: true,
		},
		{
			name: "unsorted peaks",
			spec: &Spectrum{
				Name:        "PC 16:0_18:1",
				PrecursorMZ: 760.585,
				Charge:      1,
				Peaks: []Peak{
					{MZ: 760.585, Intensity: 20.0},
					{MZ: 184.073, Intensity: 100.0},
				},
			},
			wantErr: true,
		},
		{
			name: "NaN m/z",
			spec: &Spectrum{
				Name:        "PC 16:0_18:1",
				PrecursorMZ: 760.585,
				Charge:      1,
				Peaks:       []Peak{{MZ: math.NaN(), Intensity: 100.0}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSortPeaks(t *testing.T) {
	spec := &Spectrum{
		Peaks: []Peak{
			{MZ: 300.0, Intensity: 100.0},
			{MZ: 100.0, Intensity: 200.0},
			{MZ: 200.0, Intensity: 150.0},
		},
	}

	spec.SortPeaks()

	expected := []float64{100.0, 200.0, 300.0}
	for i, peak := range spec.Peaks {
		if peak.MZ != expected[i] {
			t.Errorf("Peak %d: expected m/z %.1f, got %.1f", i, expected[i], peak.MZ)
		}
	}
}

func TestBasePeak(t *testing.T) {
	spec := &Spectrum{
		Peaks: []Peak{
			{MZ: 184.073, Intensity: 40.0},
			{MZ: 577.519, Intensity: 90.0},
			{MZ: 760.585, Intensity: 10.0},
		},
	}

	base, ok := spec.BasePeak()
	if !ok || base.MZ != 577.519 {
		t.Errorf("BasePeak() = %+v, %v", base, ok)
	}

	if _, ok := (&Spectrum{}).BasePeak(); ok {
		t.Error("expected no base peak for empty spectrum")
	}
}

func TestMergePeaks(t *testing.T) {
	peaks := []Peak{
		{MZ: 551.5034, Intensity: 100, Annotation: "[M+NH4-FA1-NH3]+"},
		{MZ: 868.8009, Intensity: 5, Annotation: "[M+NH4]+"},
		{MZ: 551.5034, Intensity: 100, Annotation: "[M+NH4-FA2-NH3]+"},
		{MZ: 551.5036, Intensity: 60, Annotation: "[M+NH4-FA3-NH3]+"},
		{MZ: 239.2369, Intensity: 0, Annotation: "FA1 acylium"},
	}

	got := MergePeaks(peaks, CoincidenceTolerance)
	want := []Peak{
		{MZ: 551.5034, Intensity: 100, Annotation: "[M+NH4-FA1-NH3]+/[M+NH4-FA2-NH3]+/[M+NH4-FA3-NH3]+"},
		{MZ: 868.8009, Intensity: 5, Annotation: "[M+NH4]+"},
		{MZ: 239.2369, Intensity: 0, Annotation: "FA1 acylium"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d peaks, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("peak %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(peaks) != 5 || peaks[0].Annotation != "[M+NH4-FA1-NH3]+" {
		t.Error("input must not be modified")
	}

	distinct := []Peak{{MZ: 184.0733, Intensity: 100}, {MZ: 184.0740, Intensity: 50}}
	if got := MergePeaks(distinct, CoincidenceTolerance); len(got) != 2 {
		t.Errorf("peaks 3.8 ppm apart merged: %+v", got)
	}
}

func TestFragmentEntryGenerated(t *testing.T) {
	if (FragmentEntry{Type: "HG 184", Intensity: 0}).Generated() {
		t.Error("zero-intensity fragment must not be generated")
	}
	if !(FragmentEntry{Type: "HG 184", Intensity: 1}).Generated() {
		t.Error("non-zero fragment must be generated")
	}
}

func TestSpectrumLabel(t *testing.T) {
	spec := &Spectrum{Name: "PC 16:0_18:1", PrecursorType: "[M+H]+"}

	if got := spec.Label(); got != "PC 16:0_18:1 [M+H]+" {
		t.Errorf("Expected label %q, got %q", "PC 16:0_18:1 [M+H]+", got)
	}
}
