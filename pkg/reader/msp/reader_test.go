package msp

import (
	"strings"
	"testing"
)

const library = `NAME: PC 16:0_18:1
PRECURSORMZ: 760.5851
PRECURSORTYPE: [M+H]+
FORMULA: C42H82NO8P
Ontology: PC
INSTRUMENT: Orbitrap
Comment: reference
Num Peaks: 3
184.0733	100	"HG 184"
760.5851	22
577.5190	9.5	"[M+H-183]+ loss"

Name: PE 18:0_20:4
PrecursorMZ: 766.5392
Precursor_type: [M-H]-
Num Peaks: 2
303.2330 100
283.2643 80

Name: LPC 18:1
PRECURSORMZ: 522.3554
Charge: 1
`

func TestReaderReadsEntries(t *testing.T) {
	r := NewReader(strings.NewReader(library))
	specs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("got %d spectra, want 3", len(specs))
	}

	pc := specs[0]
	if pc.Name != "PC 16:0_18:1" || pc.PrecursorType != "[M+H]+" || pc.Charge != 1 {
		t.Errorf("unexpected header: %+v", pc)
	}
	if pc.Formula != "C42H82NO8P" || pc.CompoundClass != "PC" || pc.Instrument != "Orbitrap" || pc.Comment != "reference" {
		t.Errorf("unexpected metadata: %+v", pc)
	}
	if len(pc.Peaks) != 3 {
		t.Fatalf("got %d peaks, want 3", len(pc.Peaks))
	}
	if !pc.ArePeaksSorted() {
		t.Error("peaks must be sorted")
	}
	if pc.Peaks[0].Annotation != "HG 184" {
		t.Errorf("annotation = %q, want HG 184", pc.Peaks[0].Annotation)
	}
	if pc.Peaks[1].Annotation != "[M+H-183]+ loss" || pc.Peaks[1].Intensity != 9.5 {
		t.Errorf("unexpected peak: %+v", pc.Peaks[1])
	}

	if pe := specs[1]; pe.Charge != -1 || pe.PrecursorMZ != 766.5392 || len(pe.Peaks) != 2 {
		t.Errorf("unexpected PE entry: %+v", pe)
	}

	if lpc := specs[2]; lpc.Charge != 1 || len(lpc.Peaks) != 0 {
		t.Errorf("unexpected trailing entry: %+v", lpc)
	}
}

func TestChargeFromIon(t *testing.T) {
	tests := []struct {
		ion  string
		want int
	}{
		{"[M+H]+", 1},
		{"[M-H]-", -1},
		{"[M+2H]2+", 2},
		{"[M-2H]2-", -2},
		{"M+H", 0},
	}
	for _, tt := range tests {
		t.Run(tt.ion, func(t *testing.T) {
			if got := chargeFromIon(tt.ion); got != tt.want {
				t.Errorf("chargeFromIon(%s) = %d, want %d", tt.ion, got, tt.want)
			}
		})
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad precursor", "Name: X\nPrecursorMZ: abc\n"},
		{"bad peak", "Name: X\nNum Peaks: 1\n100.0\n"},
		{"bad num peaks", "Name: X\nNum Peaks: many\n"},
		{"missing name", "PrecursorMZ: 100\nNum Peaks: 0\n"},
		{"not a header", "Name: X\njust text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input))
			if r.Next() {
				t.Fatalf("Next() = true, want false")
			}
			if r.Err() == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReaderEmptyInput(t *testing.T) {
	r := NewReader(strings.NewReader("\n\n"))
	if r.Next() {
		t.Error("Next() on empty input should be false")
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}
