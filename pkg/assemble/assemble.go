// Package assemble turns a resolved tail assembly into a lipid structure and
// its fragment list for one adduct.
package assemble

import (
	"fmt"

	"github.com/ChrisMcGann/LipidKey/pkg/compose"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
	"github.com/ChrisMcGann/LipidKey/pkg/registry"
)

// Result is an assembled structure resolved for one adduct.
type Result struct {
	Structure  *registry.Structure
	Adduct     *registry.Adduct
	Fragments  []core.FragmentEntry
	AdductMass float64
}

// DisplayName returns the species name of the structure.
func (r *Result) DisplayName() string {
	return r.Structure.Name()
}

// Build flattens asm into slot order, constructs the class structure and
// resolves its fragments for adductName using the adduct's owned intensities.
// A slot list that does not fit the class is returned as
// registry.ErrSlotMismatch and must not be retried.
func Build(class *registry.Class, asm compose.Assembly, adductName string) (*Result, error) {
	adduct, err := class.Adduct(adductName)
	if err != nil {
		return nil, err
	}

	structure, err := class.NewStructure(asm.Slots())
	if err != nil {
		return nil, err
	}

	fragments, err := structure.ResolveSpectra(adduct.Name, adduct.Intensities)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", structure.Name(), adduct.Name, err)
	}

	mass, err := structure.AdductMass(adduct.Name, adduct.Charge())
	if err != nil {
		return nil, fmt.Errorf("adduct mass %s %s: %w", structure.Name(), adduct.Name, err)
	}

	return &Result{
		Structure:  structure,
		Adduct:     adduct,
		Fragments:  fragments,
		AdductMass: mass,
	}, nil
}

// Spectrum converts the result into a spectrum of every fragment, zero
// intensities included, in fragment definition order. Fragments that land on
// the same m/z, such as losses of identical tails, become one peak.
func (r *Result) Spectrum() *core.Spectrum {
	peaks := make([]core.Peak, 0, len(r.Fragments))
	for _, f := range r.Fragments {
		peaks = append(peaks, f.Peak())
	}
	return &core.Spectrum{
		Name:          r.Structure.Name(),
		PrecursorType: r.Adduct.Name,
		PrecursorMZ:   r.AdductMass,
		Charge:        r.Adduct.Charge(),
		Peaks:         core.MergePeaks(peaks, core.CoincidenceTolerance),
		Formula:       r.Structure.Composition().String(),
		CompoundClass: r.Structure.Class.Name,
		SourceFormat:  "preview",
	}
}
