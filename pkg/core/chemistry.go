// Package core provides chemistry calculations for lipid mass calculations
package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Atomic masses (monoisotopic)
const (
	MassH  = 1.0078250321
	MassD  = 2.0141017780
	MassC  = 12.0000000000
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassS  = 31.9720706900
	MassP  = 30.9737615100
	MassNa = 22.9897692809

	// Proton and electron mass for charge calculations
	ProtonMass   = 1.00727646688
	ElectronMass = 0.00054857990946
)

// Composition stores elemental composition
type Composition struct {
	C, H, D, N, O, P, S, Na int
}

// Add returns the element-wise sum of two compositions.
func (c Composition) Add(o Composition) Composition {
	return Composition{
		C:  c.C + o.C,
		H:  c.H + o.H,
		D:  c.D + o.D,
		N:  c.N + o.N,
		O:  c.O + o.O,
		P:  c.P + o.P,
		S:  c.S + o.S,
		Na: c.Na + o.Na,
	}
}

// Sub returns the element-wise difference of two compositions.
func (c Composition) Sub(o Composition) Composition {
	return c.Add(Composition{C: -o.C, H: -o.H, D: -o.D, N: -o.N, O: -o.O, P: -o.P, S: -o.S, Na: -o.Na})
}

// Mass computes the monoisotopic mass of the composition.
func (c Composition) Mass() float64 {
	return float64(c.C)*MassC +
		float64(c.H)*MassH +
		float64(c.D)*MassD +
		float64(c.N)*MassN +
		float64(c.O)*MassO +
		float64(c.P)*MassP +
		float64(c.S)*MassS +
		float64(c.Na)*MassNa
}

// String renders the composition in Hill order (C, H, then alphabetical).
func (c Composition) String() string {
	out := ""
	add := func(sym string, n int) {
		switch {
		case n == 0:
		case n == 1:
			out += sym
		default:
			out += sym + strconv.Itoa(n)
		}
	}
	add("C", c.C)
	add("H", c.H)
	add("D", c.D)
	add("N", c.N)
	add("Na", c.Na)
	add("O", c.O)
	add("P", c.P)
	add("S", c.S)
	return out
}

var formulaElement = regexp.MustCompile(`([A-Z][a-z]?)(\d*)`)

// ParseFormula parses a molecular formula such as "C8H20NO6P" or "H2O".
func ParseFormula(formula string) (Composition, error) {
	var comp Composition
	if formula == "" {
		return comp, nil
	}

	consumed := 0
	for _, m := range formulaElement.FindAllStringSubmatchIndex(formula, -1) {
		if m[0] != consumed {
			return Composition{}, fmt.Errorf("invalid formula '%s' at offset %d", formula, consumed)
		}
		consumed = m[1]

		sym := formula[m[2]:m[3]]
		n := 1
		if m[4] != m[5] {
			v, err := strconv.Atoi(formula[m[4]:m[5]])
			if err != nil {
				return Composition{}, fmt.Errorf("invalid count for %s in '%s': %w", sym, formula, err)
			}
			n = v
		}

		switch sym {
		case "C":
			comp.C += n
		case "H":
			comp.H += n
		case "D":
			comp.D += n
		case "N":
			comp.N += n
		case "O":
			comp.O += n
		case "P":
			comp.P += n
		case "S":
			comp.S += n
		case "Na":
			comp.Na += n
		default:
			return Composition{}, fmt.Errorf("unsupported element '%s' in formula '%s'", sym, formula)
		}
	}
	if consumed != len(formula) {
		return Composition{}, fmt.Errorf("invalid formula '%s' at offset %d", formula, consumed)
	}

	return comp, nil
}

// MustParseFormula is like ParseFormula but panics on error. Intended for
// package-level constants.
func MustParseFormula(formula string) Composition {
	comp, err := ParseFormula(formula)
	if err != nil {
		panic(err)
	}
	return comp
}

// CalculateMZ converts a neutral mass plus an adduct mass shift to m/z for the
// given charge state. The sign of charge is ignored.
func CalculateMZ(neutralMass, adductShift float64, charge int) float64 {
	z := charge
	if z < 0 {
		z = -z
	}
	if z == 0 {
		z = 1
	}
	return (neutralMass + adductShift) / float64(z)
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
