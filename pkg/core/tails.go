package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ChainType identifies the chemical linkage of a tail building block.
type ChainType int

const (
	Acyl ChainType = iota
	Ether
	Vinyl
	Base
)

func (t ChainType) String() string {
	switch t {
	case Acyl:
		return "acyl"
	case Ether:
		return "ether"
	case Vinyl:
		return "vinyl"
	case Base:
		return "base"
	default:
		return fmt.Sprintf("ChainType(%d)", int(t))
	}
}

// Tail is a single fatty-acid-like building block. Tails are plain values and
// compare equal when every field is equal.
type Tail struct {
	Carbons     int
	DoubleBonds int
	Type        ChainType
	Hydroxyls   int // for Base tails this is the backbone hydroxyl count
	Deuterium   int
}

// Composition returns the elemental contribution of the tail when attached to
// a lipid backbone. Acyl, ether and vinyl tails replace one backbone hydrogen,
// so their composition is that of the substituent group. Base tails carry the
// whole sphingoid base.
func (t Tail) Composition() Composition {
	var comp Composition
	n, d := t.Carbons, t.DoubleBonds

	switch t.Type {
	case Acyl:
		comp = Composition{C: n, H: 2*n - 1 - 2*d, O: 1 + t.Hydroxyls}
	case Ether:
		comp = Composition{C: n, H: 2*n + 1 - 2*d, O: t.Hydroxyls}
	case Vinyl:
		// the 1Z vinyl double bond is implied by the linkage, not counted in d
		comp = Composition{C: n, H: 2*n - 1 - 2*d, O: t.Hydroxyls}
	case Base:
		comp = Composition{C: n, H: 2*n + 3 - 2*d, N: 1, O: t.Hydroxyls}
	}

	comp.H -= t.Deuterium
	comp.D += t.Deuterium
	return comp
}

// Neutral returns the composition of the free acid (acyl) or alcohol (ether,
// vinyl) released when the tail is cleaved from the backbone.
func (t Tail) Neutral() Composition {
	if t.Type == Base {
		return t.Composition()
	}
	return t.Composition().Add(Composition{H: 1, O: 1})
}

// String renders the tail in shorthand notation, e.g. "16:0", "O-18:1",
// "P-16:0", "18:1;O2" for a sphingoid base or "18:1(d7)".
func (t Tail) String() string {
	var b strings.Builder
	switch t.Type {
	case Ether:
		b.WriteString("O-")
	case Vinyl:
		b.WriteString("P-")
	}
	fmt.Fprintf(&b, "%d:%d", t.Carbons, t.DoubleBonds)
	switch {
	case t.Hydroxyls == 1:
		b.WriteString(";O")
	case t.Hydroxyls > 1:
		fmt.Fprintf(&b, ";O%d", t.Hydroxyls)
	}
	if t.Deuterium > 0 {
		fmt.Fprintf(&b, "(d%d)", t.Deuterium)
	}
	return b.String()
}

var tailPattern = regexp.MustCompile(`^(O-|P-)?(\d+):(\d+)(?:;O(\d*))?(?:\(d(\d+)\))?$`)

// ParseTail parses acyl, ether and vinyl shorthand ("16:0", "O-16:0",
// "P-18:1", "18:1;O", "16:0(d5)"). Base tails are built with BaseTail.
func ParseTail(s string) (Tail, error) {
	m := tailPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Tail{}, fmt.Errorf("invalid tail notation '%s'", s)
	}

	t := Tail{Type: Acyl}
	switch m[1] {
	case "O-":
		t.Type = Ether
	case "P-":
		t.Type = Vinyl
	}

	t.Carbons, _ = strconv.Atoi(m[2])
	t.DoubleBonds, _ = strconv.Atoi(m[3])
	if strings.Contains(s, ";O") {
		t.Hydroxyls = 1
		if m[4] != "" {
			t.Hydroxyls, _ = strconv.Atoi(m[4])
		}
	}
	if m[5] != "" {
		t.Deuterium, _ = strconv.Atoi(m[5])
	}

	if t.Carbons == 0 {
		return Tail{}, fmt.Errorf("invalid tail notation '%s': carbon count must be positive", s)
	}
	if 2*t.DoubleBonds >= 2*t.Carbons-1 {
		return Tail{}, fmt.Errorf("invalid tail notation '%s': too many double bonds for %d carbons", s, t.Carbons)
	}
	return t, nil
}

// ParseTails parses a list of tail notations in order.
func ParseTails(list []string) ([]Tail, error) {
	tails := make([]Tail, 0, len(list))
	for _, s := range list {
		t, err := ParseTail(s)
		if err != nil {
			return nil, err
		}
		tails = append(tails, t)
	}
	return tails, nil
}

// baseType describes a sphingoid base family; the length comes from the class.
type baseType struct {
	DoubleBonds int
	Hydroxyls   int
}

// BaseTypes maps base type names to their desaturation and hydroxylation.
var BaseTypes = map[string]baseType{
	"SPB;O2": {DoubleBonds: 1, Hydroxyls: 2}, // sphingosine
	"SPA;O2": {DoubleBonds: 0, Hydroxyls: 2}, // sphinganine
	"SPB;O3": {DoubleBonds: 0, Hydroxyls: 3}, // phytosphingosine
	"SPD;O2": {DoubleBonds: 2, Hydroxyls: 2}, // sphingadienine
}

// BaseTail returns the single base building block for a base type and length.
func BaseTail(typeName string, carbons int) (Tail, error) {
	bt, ok := BaseTypes[typeName]
	if !ok {
		return Tail{}, fmt.Errorf("unknown base type '%s'", typeName)
	}
	if carbons <= 0 {
		return Tail{}, fmt.Errorf("base type '%s': length must be positive, got %d", typeName, carbons)
	}
	return Tail{Carbons: carbons, DoubleBonds: bt.DoubleBonds, Type: Base, Hydroxyls: bt.Hydroxyls}, nil
}

// Default tail catalogs used when no pool is configured.
var (
	DefaultAcylPool = []Tail{
		{Carbons: 16, DoubleBonds: 0, Type: Acyl},
		{Carbons: 18, DoubleBonds: 0, Type: Acyl},
		{Carbons: 18, DoubleBonds: 1, Type: Acyl},
		{Carbons: 18, DoubleBonds: 2, Type: Acyl},
		{Carbons: 20, DoubleBonds: 4, Type: Acyl},
		{Carbons: 22, DoubleBonds: 6, Type: Acyl},
	}
	DefaultEtherPool = []Tail{
		{Carbons: 16, DoubleBonds: 0, Type: Ether},
		{Carbons: 18, DoubleBonds: 0, Type: Ether},
		{Carbons: 18, DoubleBonds: 1, Type: Ether},
	}
	DefaultVinylPool = []Tail{
		{Carbons: 16, DoubleBonds: 0, Type: Vinyl},
		{Carbons: 18, DoubleBonds: 0, Type: Vinyl},
		{Carbons: 18, DoubleBonds: 1, Type: Vinyl},
	}
)

// DefaultPool returns a copy of the built-in catalog for a chain type. Base
// tails have no pool; they are derived from the class with BaseTail.
func DefaultPool(t ChainType) []Tail {
	var src []Tail
	switch t {
	case Acyl:
		src = DefaultAcylPool
	case Ether:
		src = DefaultEtherPool
	case Vinyl:
		src = DefaultVinylPool
	}
	out := make([]Tail, len(src))
	copy(out, src)
	return out
}
