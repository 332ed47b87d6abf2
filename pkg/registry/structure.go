package registry

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/LipidKey/pkg/compose"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

// Structure is a lipid species built from a class and an ordered slot list.
type Structure struct {
	Class *Class
	Tails []core.Tail
}

// NewStructure builds a structure from tails in pattern slot order. The list
// must have one tail per recognized pattern slot, each of the slot's chain
// type; anything else is a caller bug reported as ErrSlotMismatch.
func (c *Class) NewStructure(tails []core.Tail) (*Structure, error) {
	slots := c.Pattern.Slots()
	if len(tails) != len(slots) {
		return nil, fmt.Errorf("class %s: got %d tails for pattern %s: %w", c.Name, len(tails), c.Pattern, ErrSlotMismatch)
	}
	for i, code := range slots {
		want, _ := compose.ChainType(code)
		if tails[i].Type != want {
			return nil, fmt.Errorf("class %s: slot %d is %v, want %v: %w", c.Name, i+1, tails[i].Type, want, ErrSlotMismatch)
		}
	}

	owned := make([]core.Tail, len(tails))
	copy(owned, tails)
	return &Structure{Class: c, Tails: owned}, nil
}

// Name returns the species-level name, e.g. "PC 16:0_18:1" or
// "Cer 18:1;O2/16:0". Positions are not resolved, so chains are joined with
// "_" except after a sphingoid base.
func (s *Structure) Name() string {
	var b strings.Builder
	b.WriteString(s.Class.Label)
	for i, t := range s.Tails {
		switch {
		case i == 0:
			b.WriteByte(' ')
		case s.Tails[i-1].Type == core.Base:
			b.WriteByte('/')
		default:
			b.WriteByte('_')
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// Composition returns the elemental composition of the neutral molecule.
func (s *Structure) Composition() core.Composition {
	comp := s.Class.backbone
	for _, t := range s.Tails {
		comp = comp.Add(t.Composition())
		if t.Type != core.Base {
			comp.H--
		}
	}
	return comp
}

// NeutralMass returns the monoisotopic mass of the neutral molecule.
func (s *Structure) NeutralMass() float64 {
	return s.Composition().Mass()
}

// AdductMass returns the m/z of the structure ionized as adductName. A zero
// charge uses the adduct's own charge state.
func (s *Structure) AdductMass(adductName string, charge int) (float64, error) {
	def, ok := s.Class.table.Get(adductName)
	if !ok {
		return 0, fmt.Errorf("adduct %s: %w", adductName, ErrNotFound)
	}
	if charge == 0 {
		charge = def.Charge
	}
	return core.CalculateMZ(s.NeutralMass(), def.MassShift, charge), nil
}

// ResolveSpectra resolves the fragments of the structure for adductName.
// Intensities come from overrides where present, otherwise from the fragment
// definitions. Entries keep definition order.
func (s *Structure) ResolveSpectra(adductName string, overrides FragmentList) ([]core.FragmentEntry, error) {
	adduct, err := s.Class.Adduct(adductName)
	if err != nil {
		return nil, err
	}
	precursor, err := s.AdductMass(adductName, 0)
	if err != nil {
		return nil, err
	}

	z := adduct.def.Charge
	absZ := float64(z)
	sign := 1.0
	if z < 0 {
		absZ = -absZ
		sign = -1.0
	}
	neutral := s.NeutralMass()

	entries := make([]core.FragmentEntry, 0, len(adduct.Fragments))
	for _, f := range adduct.Fragments {
		var mz float64
		switch f.Kind {
		case KindPrecursor:
			mz = precursor
		case KindNeutralLoss:
			mz = (neutral + adduct.def.MassShift - f.loss.Mass()) / absZ
		case KindIon:
			mz = f.loss.Mass() - sign*core.ElectronMass
		case KindTailLoss:
			tail := s.Tails[f.Slot-1]
			mz = (neutral + adduct.def.MassShift - tail.Neutral().Mass() - f.loss.Mass()) / absZ
		case KindTailIon:
			tail := s.Tails[f.Slot-1]
			mz = tail.Neutral().Mass() - f.loss.Mass() + sign*core.ProtonMass
		}

		intensity := f.Intensity
		if v, ok := overrides[f.Type]; ok {
			intensity = v
		}

		entries = append(entries, core.FragmentEntry{
			Type:      f.Type,
			MZ:        core.RoundFloat(mz, 6),
			Intensity: intensity,
			Comment:   f.Comment,
		})
	}
	return entries, nil
}
