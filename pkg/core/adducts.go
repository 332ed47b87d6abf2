// Package core provides adduct parsing and management
package core

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// AdductDef describes how a precursor ion is formed from a neutral molecule.
type AdductDef struct {
	Name      string
	MassShift float64 // added to the neutral mass before dividing by |Charge|
	Charge    int     // signed charge state
}

// AdductTable stores adduct definitions
type AdductTable struct {
	adducts map[string]AdductDef // name -> definition
}

// NewAdductTable creates an empty adduct table
func NewAdductTable() *AdductTable {
	return &AdductTable{
		adducts: make(map[string]AdductDef),
	}
}

// LoadFromCSV loads adducts from a CSV file (format: name,massshift,charge)
func (t *AdductTable) LoadFromCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			return fmt.Errorf("line %d: invalid format, expected 3 comma-separated fields", lineNum)
		}

		name := strings.TrimSpace(parts[0])
		massStr := strings.TrimSpace(parts[1])
		chargeStr := strings.TrimSpace(parts[2])

		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}
		charge, err := strconv.Atoi(chargeStr)
		if err != nil || charge == 0 {
			return fmt.Errorf("line %d: invalid charge value '%s'", lineNum, chargeStr)
		}

		t.Add(name, mass, charge)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading CSV: %w", err)
	}

	return nil
}

// Get returns the definition for an adduct name
func (t *AdductTable) Get(name string) (AdductDef, bool) {
	def, ok := t.adducts[name]
	return def, ok
}

// Add adds or updates an adduct
func (t *AdductTable) Add(name string, massShift float64, charge int) {
	t.adducts[name] = AdductDef{Name: name, MassShift: massShift, Charge: charge}
}

// Names returns all adduct names in sorted order.
func (t *AdductTable) Names() []string {
	names := make([]string, 0, len(t.adducts))
	for name := range t.adducts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultAdductTable returns an AdductTable pre-loaded with common lipid adducts
func DefaultAdductTable() *AdductTable {
	t := NewAdductTable()

	// Positive mode
	t.Add("[M+H]+", ProtonMass, 1)
	t.Add("[M+Na]+", MassNa-ElectronMass, 1)
	t.Add("[M+K]+", 38.9637064864-ElectronMass, 1)
	t.Add("[M+NH4]+", MassN+4*MassH-ElectronMass, 1)
	t.Add("[M+H-H2O]+", ProtonMass-(2*MassH+MassO), 1)
	t.Add("[M+2H]2+", 2*ProtonMass, 2)
	t.Add("[M]+", -ElectronMass, 1)

	// Negative mode
	t.Add("[M-H]-", -ProtonMass, -1)
	t.Add("[M+Cl]-", 34.968852682+ElectronMass, -1)
	t.Add("[M+HCOO]-", MassC+MassH+2*MassO+ElectronMass, -1)
	t.Add("[M+CH3COO]-", 2*MassC+3*MassH+2*MassO+ElectronMass, -1)
	t.Add("[M-CH3]-", -(MassC+3*MassH)+ElectronMass, -1)
	t.Add("[M-2H]2-", -2*ProtonMass, -2)

	return t
}
