// Package registry holds lipid class and adduct definitions and builds lipid
// structures from ordered tail building blocks.
package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/LipidKey/pkg/compose"
	"github.com/ChrisMcGann/LipidKey/pkg/core"
)

//go:embed default_registry.yaml
var defaultRegistry []byte

var (
	// ErrNotFound is returned when a class, adduct or fragment is not defined.
	ErrNotFound = errors.New("not found")
	// ErrSlotMismatch is returned when a structure is built from a slot list
	// that does not fit the class pattern.
	ErrSlotMismatch = errors.New("slot list does not match class pattern")
)

// FragmentKind selects how a fragment m/z is derived.
type FragmentKind string

const (
	// KindPrecursor is the adduct ion itself.
	KindPrecursor FragmentKind = "precursor"
	// KindNeutralLoss is the precursor minus Formula.
	KindNeutralLoss FragmentKind = "neutral_loss"
	// KindIon is a fixed singly charged ion with composition Formula.
	KindIon FragmentKind = "ion"
	// KindTailLoss is the precursor minus the free acid of Slot, minus Formula.
	KindTailLoss FragmentKind = "tail_loss"
	// KindTailIon is the free acid of Slot minus Formula, protonated in
	// positive mode or deprotonated in negative mode.
	KindTailIon FragmentKind = "tail_ion"
)

// FragmentDef defines one fragment of an adduct.
type FragmentDef struct {
	Type      string       `yaml:"type"`
	Kind      FragmentKind `yaml:"kind"`
	Formula   string       `yaml:"formula,omitempty"`
	Slot      int          `yaml:"slot,omitempty"` // 1-based
	Intensity int          `yaml:"intensity"`
	Comment   string       `yaml:"comment,omitempty"`

	loss core.Composition
}

// FragmentList maps fragment type to relative intensity.
type FragmentList map[string]int

// Clone returns an independent copy.
func (l FragmentList) Clone() FragmentList {
	out := make(FragmentList, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Adduct is an adduct entry of a class. It owns the editable FragmentList for
// its (class, adduct) pair.
type Adduct struct {
	Name      string        `yaml:"name"`
	Fragments []FragmentDef `yaml:"fragments"`

	// Intensities is the owned FragmentList, seeded from the definitions.
	Intensities FragmentList `yaml:"-"`

	def core.AdductDef
}

// Charge returns the signed charge state of the adduct.
func (a *Adduct) Charge() int {
	return a.def.Charge
}

// Fragment returns the definition for a fragment type.
func (a *Adduct) Fragment(fragmentType string) (FragmentDef, bool) {
	for _, f := range a.Fragments {
		if f.Type == fragmentType {
			return f, true
		}
	}
	return FragmentDef{}, false
}

// Class is a lipid class definition.
type Class struct {
	Name        string          `yaml:"name"`
	Label       string          `yaml:"label,omitempty"` // species name prefix, defaults to Name
	Description string          `yaml:"description"`
	Pattern     compose.Pattern `yaml:"pattern"`
	Backbone    string          `yaml:"backbone"` // formula with every tail replaced by H
	BaseType    string          `yaml:"base_type,omitempty"`
	BaseLength  int             `yaml:"base_length,omitempty"`
	Adducts     []*Adduct       `yaml:"adducts"`

	backbone core.Composition
	table    *core.AdductTable
}

// Adduct returns the adduct entry for name.
func (c *Class) Adduct(name string) (*Adduct, error) {
	for _, a := range c.Adducts {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("adduct %s for class %s: %w", name, c.Name, ErrNotFound)
}

// Request returns the composition request for this class.
func (c *Class) Request() compose.Request {
	return compose.Request{Pattern: c.Pattern, BaseType: c.BaseType, BaseLength: c.BaseLength}
}

// Registry is a set of lipid classes.
type Registry struct {
	Classes []*Class `yaml:"classes"`

	table *core.AdductTable
}

// Default parses the embedded registry. Each call returns an independent
// registry so fragment edits never leak between sessions.
func Default(table *core.AdductTable) (*Registry, error) {
	return Parse(defaultRegistry, table)
}

// LoadFile reads a registry from a YAML file.
func LoadFile(path string, table *core.AdductTable) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data, table)
}

// Load reads a registry from r.
func Load(r io.Reader, table *core.AdductTable) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data, table)
}

// Parse decodes and validates registry YAML. A nil table means
// core.DefaultAdductTable.
func Parse(data []byte, table *core.AdductTable) (*Registry, error) {
	if table == nil {
		table = core.DefaultAdductTable()
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	reg.table = table

	if err := reg.init(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) init() error {
	seen := make(map[string]bool, len(r.Classes))
	for _, c := range r.Classes {
		if c.Name == "" {
			return &core.ValidationError{Field: "class", Message: "name is required"}
		}
		if seen[c.Name] {
			return &core.ValidationError{Field: "class " + c.Name, Message: "duplicate class"}
		}
		seen[c.Name] = true

		if err := c.init(r.table); err != nil {
			return err
		}
	}
	return nil
}

func (c *Class) init(table *core.AdductTable) error {
	field := "class " + c.Name
	if c.Pattern.SlotCount() == 0 {
		return &core.ValidationError{Field: field, Message: fmt.Sprintf("pattern %q has no recognized slots", c.Pattern)}
	}

	backbone, err := core.ParseFormula(c.Backbone)
	if err != nil {
		return &core.ValidationError{Field: field, Message: err.Error()}
	}
	c.backbone = backbone
	c.table = table
	if c.Label == "" {
		c.Label = c.Name
	}

	for _, code := range c.Pattern.Slots() {
		if code == compose.CodeBase {
			if _, err := core.BaseTail(c.BaseType, c.BaseLength); err != nil {
				return &core.ValidationError{Field: field, Message: err.Error()}
			}
			break
		}
	}

	if len(c.Adducts) == 0 {
		return &core.ValidationError{Field: field, Message: "at least one adduct is required"}
	}
	for _, a := range c.Adducts {
		if err := a.init(table, c.Pattern.SlotCount()); err != nil {
			return &core.ValidationError{Field: field, Message: err.Error()}
		}
	}
	return nil
}

func (a *Adduct) init(table *core.AdductTable, slots int) error {
	def, ok := table.Get(a.Name)
	if !ok {
		return fmt.Errorf("adduct %s: %w", a.Name, ErrNotFound)
	}
	a.def = def
	a.Intensities = make(FragmentList, len(a.Fragments))

	for i := range a.Fragments {
		f := &a.Fragments[i]
		if f.Type == "" {
			return fmt.Errorf("adduct %s: fragment %d has no type", a.Name, i)
		}
		if _, dup := a.Intensities[f.Type]; dup {
			return fmt.Errorf("adduct %s: duplicate fragment type %s", a.Name, f.Type)
		}
		if !core.ValidIntensity(f.Intensity) {
			return fmt.Errorf("adduct %s: fragment %s intensity %d outside 0..%d", a.Name, f.Type, f.Intensity, core.MaxIntensity)
		}

		switch f.Kind {
		case KindPrecursor, KindNeutralLoss, KindIon:
		case KindTailLoss, KindTailIon:
			if f.Slot < 1 || f.Slot > slots {
				return fmt.Errorf("adduct %s: fragment %s slot %d outside 1..%d", a.Name, f.Type, f.Slot, slots)
			}
		default:
			return fmt.Errorf("adduct %s: fragment %s has unknown kind %q", a.Name, f.Type, f.Kind)
		}

		loss, err := core.ParseFormula(f.Formula)
		if err != nil {
			return fmt.Errorf("adduct %s: fragment %s: %w", a.Name, f.Type, err)
		}
		f.loss = loss
		a.Intensities[f.Type] = f.Intensity
	}
	return nil
}

// Class returns the class named name.
func (r *Registry) Class(name string) (*Class, error) {
	for _, c := range r.Classes {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("class %s: %w", name, ErrNotFound)
}

// AdductTable returns the adduct table the registry was validated against.
func (r *Registry) AdductTable() *core.AdductTable {
	return r.table
}
