// Package sqlite writes generated lipid spectra to mzVault-compatible SQLite
// libraries
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

const (
	// Date format for HeaderTable (ISO 8601)
	headerDateFormat = "2006-01-02"
	// Date format for MaintenanceTable
	maintenanceDateFormat = "2006 01 02"
	// mzVault library schema version written to HeaderTable
	schemaVersion = 5
)

const schema = `
CREATE TABLE IF NOT EXISTS CompoundTable (
	CompoundId INTEGER PRIMARY KEY,
	Formula TEXT,
	Name TEXT,
	Synonyms BLOB_TEXT,
	Tag TEXT,
	Sequence TEXT,
	CASId TEXT,
	ChemSpiderId TEXT,
	HMDBId TEXT,
	KEGGId TEXT,
	PubChemId TEXT,
	Structure BLOB_TEXT,
	mzCloudId INTEGER,
	CompoundClass TEXT,
	SmilesDescription TEXT,
	InChiKey TEXT
);

CREATE TABLE IF NOT EXISTS SpectrumTable (
	SpectrumId INTEGER PRIMARY KEY,
	CompoundId INTEGER REFERENCES CompoundTable(CompoundId),
	mzCloudURL TEXT,
	ScanFilter TEXT,
	RetentionTime DOUBLE,
	ScanNumber INTEGER,
	PrecursorMass DOUBLE,
	NeutralMass DOUBLE,
	CollisionEnergy DOUBLE,
	Polarity TEXT,
	FragmentationMode TEXT,
	IonizationMode TEXT,
	MassAnalyzer TEXT,
	InstrumentName TEXT,
	InstrumentOperator TEXT,
	RawFileURL TEXT,
	blobMass BLOB,
	blobIntensity BLOB,
	blobAccuracy BLOB,
	blobResolution BLOB,
	blobNoises BLOB,
	blobFlags BLOB,
	blobTopPeaks BLOB,
	Version INTEGER,
	CreationDate TEXT,
	Curator TEXT,
	CurationType TEXT,
	PrecursorIonType TEXT,
	Accession TEXT
);

CREATE TABLE IF NOT EXISTS HeaderTable (
	version INTEGER NOT NULL DEFAULT 0,
	CreationDate TEXT,
	LastModifiedDate TEXT,
	Description TEXT,
	Company TEXT,
	ReadOnly BOOL,
	UserAccess TEXT,
	PartialEdits BOOL
);

CREATE TABLE IF NOT EXISTS MaintenanceTable (
	CreationDate TEXT,
	NoofCompoundsModified INTEGER,
	Description TEXT
);
`

// Options describe the library being written.
type Options struct {
	Tag         string // stored on every compound, e.g. the preview session ID
	Description string // HeaderTable description
	Curator     string
}

// Writer handles writing spectra to SQLite database files
type Writer struct {
	db           *sql.DB
	opts         Options
	compoundStmt *sql.Stmt
	spectrumStmt *sql.Stmt
	nextID       int
}

// NewWriter creates the library at outputPath and prepares its schema
func NewWriter(outputPath string, opts Options) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{db: db, opts: opts, nextID: 1}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

// prepareStatements prepares the per-spectrum inserts. Columns without a
// lipid counterpart are left NULL.
func (w *Writer) prepareStatements() error {
	var err error

	w.compoundStmt, err = w.db.Prepare(`
		INSERT INTO CompoundTable (CompoundId, Formula, Name, Tag, CompoundClass)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare compound statement: %w", err)
	}

	w.spectrumStmt, err = w.db.Prepare(`
		INSERT INTO SpectrumTable (
			SpectrumId, CompoundId, PrecursorMass, NeutralMass, Polarity,
			IonizationMode, InstrumentName, blobMass, blobIntensity,
			Version, CreationDate, Curator, CurationType, PrecursorIonType
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare spectrum statement: %w", err)
	}

	return nil
}

// WriteSpectrum writes a single spectrum as one compound and one spectrum row
func (w *Writer) WriteSpectrum(spec *core.Spectrum) error {
	if err := spec.Validate(); err != nil {
		// Unsorted input is repaired; anything else is rejected
		spec.SortPeaks()
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("spectrum %s: %w", spec.Name, err)
		}
	}

	neutral, err := neutralMass(spec)
	if err != nil {
		return err
	}

	id := w.nextID
	if _, err := w.compoundStmt.Exec(id, spec.Formula, spec.Name, w.opts.Tag, spec.CompoundClass); err != nil {
		return fmt.Errorf("failed to insert compound: %w", err)
	}

	_, err = w.spectrumStmt.Exec(
		id,                                  // SpectrumId (1:1 with compound)
		id,                                  // CompoundId
		spec.PrecursorMZ,                    // PrecursorMass
		neutral,                             // NeutralMass
		polarity(spec.Charge),               // Polarity
		"ESI",                               // IonizationMode
		spec.Instrument,                     // InstrumentName
		encodeFloat64(spec.Peaks, peakMZ),   // blobMass
		encodeFloat64(spec.Peaks, peakInt),  // blobIntensity
		1,                                   // Version
		time.Now().Format(headerDateFormat), // CreationDate
		w.opts.Curator,                      // Curator
		"predicted",                         // CurationType
		spec.PrecursorType,                  // PrecursorIonType
	)
	if err != nil {
		return fmt.Errorf("failed to insert spectrum: %w", err)
	}

	w.nextID++
	return nil
}

// Count returns the number of spectra written so far
func (w *Writer) Count() int {
	return w.nextID - 1
}

// neutralMass derives the uncharged mass from the formula, falling back to
// NULL when the spectrum carries none
func neutralMass(spec *core.Spectrum) (any, error) {
	if spec.Formula == "" {
		return nil, nil
	}
	comp, err := core.ParseFormula(spec.Formula)
	if err != nil {
		return nil, fmt.Errorf("spectrum %s: %w", spec.Name, err)
	}
	return core.RoundFloat(comp.Mass(), 6), nil
}

func polarity(charge int) string {
	if charge < 0 {
		return "-"
	}
	return "+"
}

func peakMZ(p core.Peak) float64  { return p.MZ }
func peakInt(p core.Peak) float64 { return p.Intensity }

// encodeFloat64 encodes one peak field as a little-endian float64 blob
func encodeFloat64(peaks []core.Peak, field func(core.Peak) float64) []byte {
	buf := make([]byte, len(peaks)*8)
	for i, p := range peaks {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(field(p)))
	}
	return buf
}

// Finalize writes the header and maintenance tables and closes the database
func (w *Writer) Finalize() error {
	now := time.Now()

	_, err := w.db.Exec(`
		INSERT INTO HeaderTable (version, CreationDate, LastModifiedDate, Description, Company, ReadOnly, UserAccess, PartialEdits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, schemaVersion, now.Format(headerDateFormat), now.Format(headerDateFormat), w.opts.Description, "", false, "", false)
	if err != nil {
		return fmt.Errorf("failed to insert header: %w", err)
	}

	_, err = w.db.Exec(`
		INSERT INTO MaintenanceTable (CreationDate, NoofCompoundsModified, Description)
		VALUES (?, ?, ?)
	`, now.Format(maintenanceDateFormat), w.Count(), w.opts.Description)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance: %w", err)
	}

	w.compoundStmt.Close()
	w.spectrumStmt.Close()

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}

// DecodeFloat64 reverses the blob encoding used for peak columns
func DecodeFloat64(blob []byte) []float64 {
	out := make([]float64, len(blob)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return out
}
