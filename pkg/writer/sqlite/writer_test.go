package sqlite

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

func testSpectrum() *core.Spectrum {
	return &core.Spectrum{
		Name:          "PC 16:0_18:1",
		PrecursorType: "[M+H]+",
		PrecursorMZ:   760.585082,
		Charge:        1,
		Formula:       "C42H82NO8P",
		CompoundClass: "PC",
		Peaks: []core.Peak{
			{MZ: 760.585082, Intensity: 20, Annotation: "[M+H]+"},
			{MZ: 184.073321, Intensity: 100, Annotation: "HG 184"},
		},
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.db")

	w, err := NewWriter(path, Options{Tag: "session-1", Description: "preview export"})
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	neg := testSpectrum()
	neg.Name = "PE 16:0_18:1"
	neg.PrecursorType = "[M-H]-"
	neg.Charge = -1
	neg.Formula = ""

	for _, spec := range []*core.Spectrum{testSpectrum(), neg} {
		if err := w.WriteSpectrum(spec); err != nil {
			t.Fatalf("WriteSpectrum() error = %v", err)
		}
	}
	if w.Count() != 2 {
		t.Errorf("Count() = %d, want 2", w.Count())
	}
	if err := w.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var name, tag, class, polarity, ionType string
	var neutral float64
	var mzBlob, intBlob []byte
	err = db.QueryRow(`
		SELECT c.Name, c.Tag, c.CompoundClass, s.Polarity, s.PrecursorIonType, s.NeutralMass, s.blobMass, s.blobIntensity
		FROM CompoundTable c JOIN SpectrumTable s ON s.CompoundId = c.CompoundId
		WHERE c.CompoundId = 1`).Scan(&name, &tag, &class, &polarity, &ionType, &neutral, &mzBlob, &intBlob)
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	if name != "PC 16:0_18:1" || tag != "session-1" || class != "PC" || polarity != "+" || ionType != "[M+H]+" {
		t.Errorf("unexpected row: %s %s %s %s %s", name, tag, class, polarity, ionType)
	}
	if math.Abs(neutral-759.5778) > 0.001 {
		t.Errorf("NeutralMass = %.4f, want 759.5778", neutral)
	}

	mzs := DecodeFloat64(mzBlob)
	ints := DecodeFloat64(intBlob)
	if len(mzs) != 2 || mzs[0] != 184.073321 || mzs[1] != 760.585082 {
		t.Errorf("blobMass = %v, want sorted m/z", mzs)
	}
	if len(ints) != 2 || ints[0] != 100 || ints[1] != 20 {
		t.Errorf("blobIntensity = %v", ints)
	}

	var negPolarity string
	var negNeutral sql.NullFloat64
	if err := db.QueryRow(`SELECT Polarity, NeutralMass FROM SpectrumTable WHERE SpectrumId = 2`).Scan(&negPolarity, &negNeutral); err != nil {
		t.Fatalf("query: %v", err)
	}
	if negPolarity != "-" || negNeutral.Valid {
		t.Errorf("negative spectrum: polarity %s, neutral %v", negPolarity, negNeutral)
	}

	var version, modified int
	if err := db.QueryRow(`SELECT version FROM HeaderTable`).Scan(&version); err != nil || version != schemaVersion {
		t.Errorf("header version = %d, %v", version, err)
	}
	if err := db.QueryRow(`SELECT NoofCompoundsModified FROM MaintenanceTable`).Scan(&modified); err != nil || modified != 2 {
		t.Errorf("maintenance count = %d, %v", modified, err)
	}
}

func TestWriteSpectrumRejectsInvalid(t *testing.T) {
	w, err := NewWriter(filepath.Join(t.TempDir(), "bad.db"), Options{})
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	defer w.Close()

	noPeaks := testSpectrum()
	noPeaks.Peaks = nil
	if err := w.WriteSpectrum(noPeaks); err == nil {
		t.Error("expected error for spectrum without peaks")
	}

	badFormula := testSpectrum()
	badFormula.Formula = "C42Xx"
	if err := w.WriteSpectrum(badFormula); err == nil {
		t.Error("expected error for invalid formula")
	}
	if w.Count() != 0 {
		t.Errorf("Count() = %d, want 0", w.Count())
	}
}
